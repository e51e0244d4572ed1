// zonewatch tails a running console's status feed and prints packet
// records and zone occupancy as they change.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/websocket"

	"github.com/teslashibe/smartcam/pkg/web"
)

func main() {
	addr := flag.String("addr", "localhost:8080", "Console host:port")
	statusToo := flag.Bool("status", false, "Print every status update, not just changes")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	u := url.URL{Scheme: "ws", Host: *addr, Path: "/ws/status"}
	for {
		err := watch(ctx, u.String(), *statusToo)
		if ctx.Err() != nil {
			return
		}
		fmt.Fprintf(os.Stderr, "⚠️  %v, reconnecting in 2s\n", err)
		select {
		case <-ctx.Done():
			return
		case <-time.After(2 * time.Second):
		}
	}
}

// watch prints events until the connection drops or ctx is done.
func watch(ctx context.Context, addr string, all bool) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, addr, nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", addr, err)
	}
	defer conn.Close()
	fmt.Printf("📡 Connected to %s\n", addr)

	go func() {
		<-ctx.Done()
		conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		conn.Close()
	}()

	var last string
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		var ev web.Event
		if err := json.Unmarshal(data, &ev); err != nil {
			fmt.Fprintf(os.Stderr, "⚠️  bad event: %v\n", err)
			continue
		}

		switch ev.Type {
		case web.EventPacket:
			if ev.Error != "" {
				fmt.Printf("%s ❌ %s (%s)\n", stamp(), ev.Record, ev.Error)
			} else if all || ev.Record != last {
				fmt.Printf("%s 📤 %s\n", stamp(), ev.Record)
			}
			last = ev.Record
		case web.EventStatus:
			if ev.Status == nil {
				continue
			}
			line := summary(ev.Status)
			if all || ev.Status.Packet.Record != last {
				fmt.Printf("%s %s\n", stamp(), line)
			}
		}
	}
}

func summary(s *web.Status) string {
	cam := "off"
	if s.Camera.Running {
		cam = fmt.Sprintf("%d (%dx%d)", s.Camera.Device.ID, s.Camera.Device.Width, s.Camera.Device.Height)
	}
	return fmt.Sprintf("📷 camera=%s scanning=%v zones=%d occupied=%d markers=%d record=%s",
		cam, s.Scanning, s.ZoneCount, s.Occupied, s.Markers, s.Packet.Record)
}

func stamp() string {
	return time.Now().Format("15:04:05.000")
}
