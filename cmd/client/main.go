package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"

	"blog-platform/internal/client"
	"blog-platform/internal/models"
	"blog-platform/pkg/logger"
)

func main() {
	serverURL := flag.String("server", "ws://localhost:8080/ws", "gateway websocket URL")
	token := flag.String("token", os.Getenv("CHAT_TOKEN"), "bearer token (defaults to CHAT_TOKEN)")
	room := flag.String("room", "", "initial room")
	flag.Parse()

	if *token == "" {
		logger.Fatal("a token is required (use -token or CHAT_TOKEN)")
	}

	session := client.NewSession(client.WebsocketDialer(*serverURL))
	session.SetNotify(render)
	if err := session.SetToken(*token, *room); err != nil {
		logger.Fatal("Failed to connect: %v", err)
	}
	defer session.Close()

	fmt.Printf("Connected as %s in room %q. Commands: /join <room>, /switch <room>, /rooms, /clear.\n",
		session.Username(), session.Room())

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		if err := session.Send(scanner.Text()); err != nil {
			logger.Error("Send failed: %v", err)
		}
		if session.Status() != client.StatusConnected {
			break
		}
	}

	fmt.Println("Disconnected.")
}

func render(m models.ChatMessage) {
	suffix := ""
	if m.Replayed {
		suffix = " (history)"
	}
	if m.System {
		fmt.Printf("[%s] %s%s\n", m.Room, m.Message, suffix)
		return
	}
	fmt.Printf("[%s] %s%s: %s\n", m.Room, m.Username, suffix, m.Message)
}
