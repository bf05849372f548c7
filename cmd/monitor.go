package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	ui "github.com/gizak/termui/v3"
	"github.com/gizak/termui/v3/widgets"
	"github.com/gorilla/websocket"
	"github.com/urfave/cli/v2"
	restmarshaller "github.com/webitel/live-relay-service/internal/handler/marshaller/rest"
)

const (
	monitorRows       = 200
	monitorHeaderRows = 5
	statusInterval    = 2 * time.Second
)

func monitorCmd() *cli.Command {
	return &cli.Command{
		Name:    "monitor",
		Aliases: []string{"m"},
		Usage:   "Watch a running relay in the terminal",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "addr",
				Usage: "Base URL of the relay HTTP server",
				Value: "http://localhost:8000",
			},
		},
		Action: func(c *cli.Context) error {
			return runMonitor(c.Context, c.String("addr"))
		},
	}
}

func runMonitor(ctx context.Context, base string) error {
	wsURL, err := feedURL(base)
	if err != nil {
		return err
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return fmt.Errorf("monitor: dial %s: %w", wsURL, err)
	}
	defer conn.Close()

	lines := make(chan string, 64)
	feedDone := make(chan error, 1)
	go readFeed(conn, lines, feedDone)

	if err := ui.Init(); err != nil {
		return fmt.Errorf("monitor: init terminal: %w", err)
	}
	defer ui.Close()

	width, height := ui.TerminalDimensions()

	header := widgets.NewParagraph()
	header.Title = " " + ServiceName + " "
	header.Text = "waiting for status..."
	header.SetRect(0, 0, width, monitorHeaderRows)

	feed := widgets.NewList()
	feed.Title = " events (q to quit) "
	feed.TextStyle = ui.NewStyle(ui.ColorWhite)
	feed.SetRect(0, monitorHeaderRows, width, height)

	ui.Render(header, feed)

	client := &http.Client{Timeout: statusInterval}
	ticker := time.NewTicker(statusInterval)
	defer ticker.Stop()

	uiEvents := ui.PollEvents()
	for {
		select {
		case <-ctx.Done():
			return nil

		case e := <-uiEvents:
			switch e.ID {
			case "q", "<C-c>":
				return nil
			case "<Resize>":
				size := e.Payload.(ui.Resize)
				header.SetRect(0, 0, size.Width, monitorHeaderRows)
				feed.SetRect(0, monitorHeaderRows, size.Width, size.Height)
				ui.Clear()
			}

		case line := <-lines:
			feed.Rows = append([]string{line}, feed.Rows...)
			if len(feed.Rows) > monitorRows {
				feed.Rows = feed.Rows[:monitorRows]
			}

		case err := <-feedDone:
			header.Text = fmt.Sprintf("feed closed: %v", err)
			feedDone = nil

		case <-ticker.C:
			header.Text = fetchStatusLine(ctx, client, base)
		}

		ui.Render(header, feed)
	}
}

func readFeed(conn *websocket.Conn, lines chan<- string, done chan<- error) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			done <- err
			return
		}
		lines <- formatEventLine(data)
	}
}

// feedURL maps the HTTP base URL onto the WebSocket endpoint.
func feedURL(base string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("monitor: parse %q: %w", base, err)
	}

	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	case "http", "":
		u.Scheme = "ws"
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + "/ws"
	return u.String(), nil
}

func fetchStatusLine(ctx context.Context, client *http.Client, base string) string {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimSuffix(base, "/")+"/api/status", nil)
	if err != nil {
		return err.Error()
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Sprintf("status unavailable: %v", err)
	}
	defer resp.Body.Close()

	var st restmarshaller.StatusResponse
	if err := json.NewDecoder(resp.Body).Decode(&st); err != nil {
		return fmt.Sprintf("status unreadable: %v", err)
	}
	return formatStatus(st)
}

func formatStatus(st restmarshaller.StatusResponse) string {
	state := "[disconnected](fg:red)"
	if st.Connected {
		state = "[connected](fg:green)"
	}
	return fmt.Sprintf("@%s %s\nsubscribers: %d  buffered: %d  ingested: %d  dropped: %d",
		st.Username, state, st.ActiveWebsockets, st.BufferedEvents, st.Ingested, st.Dropped)
}

// formatEventLine renders one feed frame as a list row.
func formatEventLine(data []byte) string {
	var ev struct {
		Type        string `json:"type"`
		Message     string `json:"message"`
		UniqueID    string `json:"unique_id"`
		Nickname    string `json:"nickname"`
		Comment     string `json:"comment"`
		GiftName    string `json:"gift_name"`
		RepeatCount int32  `json:"repeat_count"`
		Cost        int32  `json:"cost"`
	}
	if err := json.Unmarshal(data, &ev); err != nil {
		return "[?] " + string(data)
	}

	switch ev.Type {
	case "comment":
		return fmt.Sprintf("[comment] %s (@%s): %s", ev.Nickname, ev.UniqueID, ev.Comment)
	case "gift":
		return fmt.Sprintf("[gift] %s (@%s): %s x%d (%d diamonds)", ev.Nickname, ev.UniqueID, ev.GiftName, ev.RepeatCount, ev.Cost)
	case "system":
		return "[system] " + ev.Message
	default:
		return "[" + ev.Type + "] " + string(data)
	}
}
