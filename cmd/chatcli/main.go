// File: cmd/chatcli/main.go
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/iyunix/go-assistant/internal/client"
	"github.com/iyunix/go-assistant/internal/dtos"
	"github.com/iyunix/go-assistant/internal/replay"
	"github.com/iyunix/go-assistant/internal/services/ai"
)

const help = `commands:
  register <name> <email> <password>
  login <email> <password>
  logout
  list                 show your chats
  open <chat-id>       make a chat current
  new                  start a new chat with the next message
  show                 print the current chat
  edit <n> <text>      replace your message #n and regenerate
  delete <chat-id>
  voice <audio-file>   dictate a message (needs OPENAI_API_KEY)
  quit
anything else is sent as a message`

func main() {
	server := flag.String("server", "http://localhost:8080", "chat server base URL")
	timeout := flag.Duration("timeout", 2*time.Minute, "per-command timeout")
	flag.Parse()

	_ = godotenv.Load()

	api := client.New(*server)
	if token := os.Getenv("ASSISTANT_TOKEN"); token != "" {
		api.SetToken(token)
	}

	var opts []replay.ControllerOption
	var speech *replay.FileSpeech
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		cfg := ai.DefaultConfig()
		cfg.Provider = "openai"
		cfg.APIKey = key
		cfg.BaseURL = os.Getenv("OPENAI_BASE_URL")
		whisper, err := ai.NewOpenAIProvider(cfg)
		if err != nil {
			log.Fatalf("speech: %v", err)
		}
		speech = replay.NewFileSpeech(whisper)
		opts = append(opts, replay.WithSpeech(speech))
	}

	s := &session{api: api, ctl: replay.NewController(api, opts...), speech: speech}
	fmt.Println(help)

	in := bufio.NewScanner(os.Stdin)
	in.Buffer(make([]byte, 64<<10), 1<<20)
	for {
		fmt.Print("> ")
		if !in.Scan() {
			return
		}
		line := strings.TrimSpace(in.Text())
		if line == "" {
			continue
		}
		if line == "quit" || line == "exit" {
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), *timeout)
		if err := s.dispatch(ctx, line); err != nil {
			fmt.Printf("error: %v\n", err)
		}
		cancel()
	}
}

type session struct {
	api    *client.Client
	ctl    *replay.Controller
	speech *replay.FileSpeech
}

func (s *session) dispatch(ctx context.Context, line string) error {
	cmd, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)

	switch cmd {
	case "help":
		fmt.Println(help)
	case "register":
		f := strings.Fields(rest)
		if len(f) != 3 {
			return fmt.Errorf("usage: register <name> <email> <password>")
		}
		if _, err := s.api.Register(ctx, dtos.RegisterRequestDTO{Name: f[0], Email: f[1], Password: f[2]}); err != nil {
			return err
		}
		fmt.Println("registered; now login")
	case "login":
		f := strings.Fields(rest)
		if len(f) != 2 {
			return fmt.Errorf("usage: login <email> <password>")
		}
		resp, err := s.api.Login(ctx, f[0], f[1])
		if err != nil {
			return err
		}
		fmt.Printf("logged in as %s\n", resp.User.Name)
		return s.list(ctx)
	case "logout":
		return s.api.Logout(ctx)
	case "list":
		return s.list(ctx)
	case "open":
		if err := s.ctl.Open(ctx, rest); err != nil {
			return err
		}
		s.show()
	case "new":
		s.ctl.NewChat()
		fmt.Println("new chat; type a message")
	case "show":
		s.show()
	case "edit":
		return s.edit(ctx, rest)
	case "delete":
		if err := s.ctl.Delete(ctx, rest); err != nil {
			return err
		}
		fmt.Println("deleted")
	case "voice":
		return s.voice(ctx, rest)
	default:
		return s.send(ctx, line)
	}
	return nil
}

func (s *session) list(ctx context.Context) error {
	if err := s.ctl.Refresh(ctx); err != nil {
		return err
	}
	chats := s.ctl.Chats()
	if len(chats) == 0 {
		fmt.Println("(no chats)")
	}
	for _, c := range chats {
		fmt.Printf("%s  %-32s  %d msgs  %s\n", c.ID, c.Title, c.MessageCount, c.UpdatedAt.Local().Format(time.DateTime))
	}
	return nil
}

func (s *session) show() {
	c := s.ctl.CurrentChat()
	if c == nil {
		fmt.Println("(no chat open)")
		return
	}
	fmt.Printf("== %s (v%d)\n", c.Title, c.Version)
	for i, m := range c.Messages {
		fmt.Printf("[%d] %s: %s\n", i, m.Role, m.Content)
	}
}

func (s *session) send(ctx context.Context, text string) error {
	resp, err := s.ctl.Send(ctx, text)
	if err != nil {
		return err
	}
	if resp != nil {
		fmt.Printf("assistant: %s\n", resp.Message)
	}
	return nil
}

func (s *session) edit(ctx context.Context, rest string) error {
	idxStr, text, _ := strings.Cut(rest, " ")
	idx, err := strconv.Atoi(idxStr)
	if err != nil {
		return fmt.Errorf("usage: edit <n> <text>")
	}
	if err := s.ctl.BeginEdit(idx); err != nil {
		return err
	}
	resp, err := s.ctl.ApplyEdit(ctx, text)
	if err != nil {
		return err
	}
	if resp == nil {
		fmt.Println("edit cancelled")
		return nil
	}
	fmt.Printf("assistant: %s\n", resp.Message)
	return nil
}

func (s *session) voice(ctx context.Context, path string) error {
	if !s.ctl.SpeechAvailable() {
		return replay.ErrSpeechUnavailable
	}
	s.speech.SetSource(path)
	if err := s.ctl.StartListening(ctx); err != nil {
		return err
	}
	text, err := s.ctl.StopListening(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("you said: %s\n", text)
	return s.send(ctx, text)
}
