package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/fathima-sithara/quote-chat/internal/client"
	"github.com/fathima-sithara/quote-chat/internal/models"
)

func main() {
	serverURL := flag.String("server", "http://localhost:5000", "server base URL")
	wsURL := flag.String("ws", "ws://localhost:5000/ws", "websocket URL")
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"})

	engine := client.NewEngine()
	engine.OnActiveBotMessage = func(m models.Message) {
		fmt.Printf("\r[%s] bot: %s\n> ", m.CreatedAt.Local().Format("15:04:05"), m.Text)
	}
	api := client.NewAPI(*serverURL)

	notify := func(n client.Notification) {
		fmt.Printf("\r[%s] %s\n> ", strings.ToUpper(n.Kind), n.Text)
	}
	conn := client.NewConnector(*wsURL, engine, notify)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		if err := conn.Run(ctx); err != nil && ctx.Err() == nil {
			log.Fatal().Err(err).Msg("websocket connection failed")
		}
	}()

	if chats, err := api.GetChats(ctx); err != nil {
		log.Warn().Err(err).Msg("initial chat list failed")
	} else {
		engine.SetChats(chats)
	}

	fmt.Println("quote-chat client. Commands: /chats, /select N, /send TEXT, /new FIRST LAST, /delete, /toggle, /quit")
	fmt.Print("> ")

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			handleCommand(ctx, line, engine, api, conn)
		}
		if line == "/quit" {
			return
		}
		fmt.Print("> ")
	}
}

func handleCommand(ctx context.Context, line string, engine *client.Engine, api *client.API, conn *client.Connector) {
	switch {
	case line == "/quit":
		fmt.Println("bye")

	case line == "/chats":
		printChats(engine)

	case strings.HasPrefix(line, "/select "):
		idx, err := strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(line, "/select ")))
		chats := engine.Chats()
		if err != nil || idx < 1 || idx > len(chats) {
			fmt.Println("usage: /select N (see /chats)")
			return
		}
		chat := chats[idx-1]
		engine.SelectChat(chat.ID)
		msgs, err := api.GetMessages(ctx, chat.ID)
		if err != nil {
			fmt.Printf("failed to load messages: %v\n", err)
			return
		}
		engine.SetMessages(msgs)
		fmt.Printf("-- %s %s --\n", chat.FirstName, chat.LastName)
		for _, m := range msgs {
			printMessage(m)
		}

	case strings.HasPrefix(line, "/send "):
		text := strings.TrimPrefix(line, "/send ")
		sendMessage(ctx, text, engine, api)

	case strings.HasPrefix(line, "/new "):
		parts := strings.Fields(strings.TrimPrefix(line, "/new "))
		if len(parts) != 2 {
			fmt.Println("usage: /new FIRST LAST")
			return
		}
		chat, err := api.CreateChat(ctx, parts[0], parts[1])
		if err != nil {
			fmt.Printf("failed to create chat: %v\n", err)
			return
		}
		engine.SelectChat(chat.ID)
		fmt.Printf("created and selected %s %s\n", chat.FirstName, chat.LastName)

	case line == "/delete":
		id := engine.SelectedID()
		if id == "" {
			fmt.Println("no chat selected")
			return
		}
		if err := api.DeleteChat(ctx, id); err != nil {
			fmt.Printf("failed to delete chat: %v\n", err)
		}

	case line == "/toggle":
		if err := conn.ToggleRandomSender(); err != nil {
			fmt.Printf("toggle failed: %v\n", err)
		}

	default:
		fmt.Println("unknown command")
	}
}

func sendMessage(ctx context.Context, text string, engine *client.Engine, api *client.API) {
	optimistic, err := engine.OptimisticSend(text)
	if err != nil {
		fmt.Println("no chat selected")
		return
	}
	// The optimistic entry is reconciled away by the NEW_MESSAGE event that
	// follows; the response payload is deliberately not applied.
	if _, err := api.SendMessage(ctx, optimistic.ChatID, text); err != nil {
		engine.SendFailed(optimistic.ID)
		fmt.Printf("failed to send: %v\n", err)
	}
}

func printChats(engine *client.Engine) {
	chats := engine.Chats()
	if len(chats) == 0 {
		fmt.Println("no chats")
		return
	}
	for i, c := range chats {
		marker := " "
		if engine.Unread(c.ID) {
			marker = "*"
		}
		last := ""
		if c.LastMessage != nil {
			last = c.LastMessage.Text
		}
		fmt.Printf("%s %2d. %s %s  %s\n", marker, i+1, c.FirstName, c.LastName, last)
	}
	fmt.Printf("random sender: %v\n", engine.RandomSenderOn())
}

func printMessage(m models.Message) {
	fmt.Printf("[%s] %s: %s\n", m.CreatedAt.Local().Format("15:04:05"), m.Sender, m.Text)
}
