package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net"
	"os"
	"time"

	"bookify/internal/sync"
)

func main() {
	addr := flag.String("addr", defaultAddr(), "TCP sync server address")
	raw := flag.Bool("raw", false, "print raw JSON lines instead of shelf summaries")
	flag.Parse()

	for {
		if err := run(*addr, *raw); err != nil {
			log.Printf("[sync-client] disconnected: %v", err)
		}
		time.Sleep(1 * time.Second) // auto reconnect
	}
}

func defaultAddr() string {
	if v := os.Getenv("BOOKIFY_SYNC_ADDR"); v != "" {
		return v
	}
	return "127.0.0.1:7070"
}

func run(addr string, raw bool) error {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return fmt.Errorf("dial %s: %w", addr, err)
	}
	defer conn.Close()

	log.Printf("[sync-client] connected to %s", addr)

	sc := bufio.NewScanner(conn)
	for sc.Scan() {
		line := sc.Bytes()
		if raw {
			fmt.Println(string(line))
			continue
		}
		fmt.Println(formatLine(line))
	}
	if err := sc.Err(); err != nil {
		return err
	}
	return os.ErrClosed
}

// formatLine turns a shelf event into a one-line summary. Anything else
// (the welcome message, malformed input) passes through untouched.
func formatLine(line []byte) string {
	var ev sync.ShelfEvent
	if err := json.Unmarshal(line, &ev); err != nil || ev.ShelfID == 0 {
		return string(line)
	}
	return formatEvent(ev)
}

func formatEvent(ev sync.ShelfEvent) string {
	out := fmt.Sprintf("%s %s shelf %d", ev.At.Format("15:04:05"), ev.Type, ev.ShelfID)
	if ev.ShelfName != "" {
		out += fmt.Sprintf(" %q", ev.ShelfName)
	}
	if ev.BookTitle != "" {
		out += fmt.Sprintf(": %q", ev.BookTitle)
	}
	out += fmt.Sprintf(" (%d books / %d rows)", ev.Books, ev.Rows)
	return out
}
