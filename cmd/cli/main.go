package main

import (
	"bufio"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"bookify/pkg/models"
)

const defaultBaseURL = "http://localhost:8080"

type tokenData struct {
	Token string `json:"token"`
}

type sessionResponse struct {
	Token string `json:"token"`
}

type searchResponse struct {
	Query string        `json:"query"`
	Count int           `json:"count"`
	Books []models.Book `json:"books"`
}

func main() {
	global := flag.NewFlagSet("bookify", flag.ExitOnError)
	baseURL := global.String("api", defaultBaseURL, "API base URL")
	tokenPath := global.String("token", defaultTokenPath(), "token file path")
	if err := global.Parse(os.Args[1:]); err != nil {
		log.Fatalf("parse flags: %v", err)
	}
	args := global.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}

	ctx := context.Background()
	cmd := args[0]
	sub := ""
	rest := []string{}
	if len(args) > 1 {
		sub = args[1]
		rest = args[2:]
	}

	client := &http.Client{Timeout: 15 * time.Second}

	switch cmd {
	case "session":
		handleSession(ctx, client, *baseURL, *tokenPath, sub, rest)
	case "me":
		handleMe(ctx, client, *baseURL, *tokenPath, sub, rest)
	case "catalog":
		handleCatalog(ctx, client, *baseURL, sub, rest)
	case "shelves":
		handleShelves(ctx, client, *baseURL, *tokenPath, sub, rest)
	case "books":
		handleBooks(ctx, client, *baseURL, *tokenPath, sub, rest)
	case "rows":
		handleRows(ctx, client, *baseURL, *tokenPath, sub, rest)
	case "annotate":
		handleAnnotate(ctx, client, *baseURL, *tokenPath, sub, rest)
	case "notes":
		handleNotes(ctx, client, *baseURL, *tokenPath, sub, rest)
	case "sync":
		handleSync(sub, rest)
	case "notify":
		handleNotify(*baseURL, sub, rest)
	case "export":
		handleExport(ctx, client, *baseURL, *tokenPath, sub, rest)
	default:
		printUsage()
		os.Exit(1)
	}
}

func handleSession(ctx context.Context, client *http.Client, baseURL, tokenPath, sub string, args []string) {
	switch sub {
	case "open":
		fs := flag.NewFlagSet("session open", flag.ExitOnError)
		email := fs.String("email", "", "email address")
		_ = fs.Parse(args)

		if *email == "" {
			log.Fatal("email is required")
		}

		payload := map[string]string{"email": *email}
		var resp sessionResponse
		if err := doJSON(ctx, client, http.MethodPost, baseURL+"/session", "", payload, &resp); err != nil {
			log.Fatalf("open session failed: %v", err)
		}
		if err := saveToken(tokenPath, resp.Token); err != nil {
			log.Fatalf("save token: %v", err)
		}
		fmt.Println("✅ session open")
	case "close":
		if err := clearToken(tokenPath); err != nil {
			log.Fatalf("close failed: %v", err)
		}
		fmt.Println("✅ session closed")
	default:
		log.Fatal("usage: bookify session <open|close>")
	}
}

func handleMe(ctx context.Context, client *http.Client, baseURL, tokenPath, sub string, args []string) {
	token := mustToken(tokenPath)
	switch sub {
	case "show", "":
		var resp map[string]any
		if err := doJSON(ctx, client, http.MethodGet, baseURL+"/users/me", token, nil, &resp); err != nil {
			log.Fatalf("show failed: %v", err)
		}
		printJSON(resp)
	case "update":
		fs := flag.NewFlagSet("me update", flag.ExitOnError)
		name := fs.String("name", "", "display name")
		bio := fs.String("bio", "", "bio")
		_ = fs.Parse(args)

		payload := map[string]string{"name": *name, "bio": *bio}
		var resp map[string]any
		if err := doJSON(ctx, client, http.MethodPut, baseURL+"/users/me", token, payload, &resp); err != nil {
			log.Fatalf("update failed: %v", err)
		}
		printJSON(resp)
	case "email":
		fs := flag.NewFlagSet("me email", flag.ExitOnError)
		email := fs.String("email", "", "new email address")
		_ = fs.Parse(args)
		if *email == "" {
			log.Fatal("email is required")
		}

		payload := map[string]string{"email": *email}
		var resp sessionResponse
		if err := doJSON(ctx, client, http.MethodPut, baseURL+"/users/me/email", token, payload, &resp); err != nil {
			log.Fatalf("email change failed: %v", err)
		}
		// Email is baked into the token; keep the fresh one.
		if err := saveToken(tokenPath, resp.Token); err != nil {
			log.Fatalf("save token: %v", err)
		}
		fmt.Println("✅ email updated")
	case "theme":
		fs := flag.NewFlagSet("me theme", flag.ExitOnError)
		theme := fs.String("set", "", "theme to set (dark|light); empty shows current")
		_ = fs.Parse(args)

		if *theme == "" {
			var resp map[string]any
			if err := doJSON(ctx, client, http.MethodGet, baseURL+"/users/me/theme", token, nil, &resp); err != nil {
				log.Fatalf("theme failed: %v", err)
			}
			printJSON(resp)
			return
		}
		payload := map[string]string{"theme": *theme}
		var resp map[string]any
		if err := doJSON(ctx, client, http.MethodPut, baseURL+"/users/me/theme", token, payload, &resp); err != nil {
			log.Fatalf("theme failed: %v", err)
		}
		printJSON(resp)
	case "delete":
		var resp map[string]any
		if err := doJSON(ctx, client, http.MethodDelete, baseURL+"/users/me", token, nil, &resp); err != nil {
			log.Fatalf("delete failed: %v", err)
		}
		_ = clearToken(tokenPath)
		fmt.Println("✅ account deleted")
	default:
		log.Fatal("usage: bookify me <show|update|email|theme|delete>")
	}
}

func handleCatalog(ctx context.Context, client *http.Client, baseURL, sub string, args []string) {
	switch sub {
	case "categories":
		var resp map[string]any
		if err := doJSON(ctx, client, http.MethodGet, baseURL+"/catalog/categories", "", nil, &resp); err != nil {
			log.Fatalf("categories failed: %v", err)
		}
		printJSON(resp)
	case "feed":
		fs := flag.NewFlagSet("catalog feed", flag.ExitOnError)
		name := fs.String("name", "suggested", "category name")
		_ = fs.Parse(args)

		var resp map[string]any
		if err := doJSON(ctx, client, http.MethodGet, baseURL+"/catalog/categories/"+url.PathEscape(*name), "", nil, &resp); err != nil {
			log.Fatalf("feed failed: %v", err)
		}
		printJSON(resp)
	case "featured":
		fs := flag.NewFlagSet("catalog featured", flag.ExitOnError)
		genre := fs.String("genre", "suggested", "genre")
		_ = fs.Parse(args)

		var resp map[string]any
		if err := doJSON(ctx, client, http.MethodGet, baseURL+"/catalog/featured?genre="+url.QueryEscape(*genre), "", nil, &resp); err != nil {
			log.Fatalf("featured failed: %v", err)
		}
		printJSON(resp)
	case "search":
		fs := flag.NewFlagSet("catalog search", flag.ExitOnError)
		query := fs.String("q", "", "search query")
		_ = fs.Parse(args)
		if *query == "" {
			log.Fatal("query is required")
		}

		var resp searchResponse
		if err := doJSON(ctx, client, http.MethodGet, baseURL+"/catalog/search?q="+url.QueryEscape(*query), "", nil, &resp); err != nil {
			log.Fatalf("search failed: %v", err)
		}
		printJSON(resp)
	case "microgenres":
		fs := flag.NewFlagSet("catalog microgenres", flag.ExitOnError)
		seed := fs.String("seed", "", "rng seed for a stable selection")
		_ = fs.Parse(args)

		endpoint := baseURL + "/catalog/microgenres"
		if *seed != "" {
			endpoint += "?seed=" + url.QueryEscape(*seed)
		}
		var resp map[string]any
		if err := doJSON(ctx, client, http.MethodGet, endpoint, "", nil, &resp); err != nil {
			log.Fatalf("microgenres failed: %v", err)
		}
		printJSON(resp)
	default:
		log.Fatal("usage: bookify catalog <categories|feed|featured|search|microgenres>")
	}
}

func handleShelves(ctx context.Context, client *http.Client, baseURL, tokenPath, sub string, args []string) {
	token := mustToken(tokenPath)
	switch sub {
	case "list", "":
		var resp map[string]any
		if err := doJSON(ctx, client, http.MethodGet, baseURL+"/users/shelves", token, nil, &resp); err != nil {
			log.Fatalf("list failed: %v", err)
		}
		printJSON(resp)
	case "create":
		fs := flag.NewFlagSet("shelves create", flag.ExitOnError)
		name := fs.String("name", "", "shelf name")
		_ = fs.Parse(args)

		payload := map[string]string{"name": *name}
		var resp map[string]any
		if err := doJSON(ctx, client, http.MethodPost, baseURL+"/users/shelves", token, payload, &resp); err != nil {
			log.Fatalf("create failed: %v", err)
		}
		printJSON(resp)
	case "show":
		fs := flag.NewFlagSet("shelves show", flag.ExitOnError)
		id := fs.Int64("id", 0, "shelf id")
		_ = fs.Parse(args)
		if *id <= 0 {
			log.Fatal("shelf id is required")
		}

		var resp map[string]any
		if err := doJSON(ctx, client, http.MethodGet, fmt.Sprintf("%s/users/shelves/%d", baseURL, *id), token, nil, &resp); err != nil {
			log.Fatalf("show failed: %v", err)
		}
		printJSON(resp)
	case "current":
		var resp map[string]any
		if err := doJSON(ctx, client, http.MethodGet, baseURL+"/users/shelves/current", token, nil, &resp); err != nil {
			log.Fatalf("current failed: %v", err)
		}
		printJSON(resp)
	case "switch":
		fs := flag.NewFlagSet("shelves switch", flag.ExitOnError)
		id := fs.Int64("id", 0, "shelf id")
		_ = fs.Parse(args)
		if *id <= 0 {
			log.Fatal("shelf id is required")
		}

		payload := map[string]int64{"id": *id}
		var resp map[string]any
		if err := doJSON(ctx, client, http.MethodPut, baseURL+"/users/shelves/current", token, payload, &resp); err != nil {
			log.Fatalf("switch failed: %v", err)
		}
		printJSON(resp)
	default:
		log.Fatal("usage: bookify shelves <list|create|show|current|switch>")
	}
}

func handleBooks(ctx context.Context, client *http.Client, baseURL, tokenPath, sub string, args []string) {
	token := mustToken(tokenPath)
	switch sub {
	case "add":
		fs := flag.NewFlagSet("books add", flag.ExitOnError)
		shelfID := fs.Int64("shelf", 0, "shelf id (0 = current shelf)")
		title := fs.String("title", "", "book title")
		author := fs.String("author", "", "author")
		img := fs.String("img", "", "cover image URL")
		id := fs.String("id", "", "catalog volume id")
		_ = fs.Parse(args)
		if *title == "" {
			log.Fatal("title is required")
		}

		payload := map[string]any{
			"title":  *title,
			"author": *author,
			"img":    *img,
			"id":     *id,
		}
		endpoint := baseURL + "/users/shelf/books"
		if *shelfID > 0 {
			endpoint = fmt.Sprintf("%s/users/shelves/%d/books", baseURL, *shelfID)
		}
		var resp map[string]any
		if err := doJSON(ctx, client, http.MethodPost, endpoint, token, payload, &resp); err != nil {
			log.Fatalf("add failed: %v", err)
		}
		printJSON(resp)
	case "remove":
		fs := flag.NewFlagSet("books remove", flag.ExitOnError)
		shelfID := fs.Int64("shelf", 0, "shelf id")
		row := fs.Int("row", -1, "row index (0-based)")
		index := fs.Int("index", -1, "book index within the row (0-based)")
		_ = fs.Parse(args)
		if *shelfID <= 0 || *row < 0 || *index < 0 {
			log.Fatal("shelf, row and index are required")
		}

		endpoint := fmt.Sprintf("%s/users/shelves/%d/rows/%d/books/%d", baseURL, *shelfID, *row, *index)
		var resp map[string]any
		if err := doJSON(ctx, client, http.MethodDelete, endpoint, token, nil, &resp); err != nil {
			log.Fatalf("remove failed: %v", err)
		}
		printJSON(resp)
	case "mirror":
		var resp map[string]any
		if err := doJSON(ctx, client, http.MethodGet, baseURL+"/users/shelf", token, nil, &resp); err != nil {
			log.Fatalf("mirror failed: %v", err)
		}
		printJSON(resp)
	default:
		log.Fatal("usage: bookify books <add|remove|mirror>")
	}
}

func handleRows(ctx context.Context, client *http.Client, baseURL, tokenPath, sub string, args []string) {
	token := mustToken(tokenPath)
	switch sub {
	case "add":
		fs := flag.NewFlagSet("rows add", flag.ExitOnError)
		shelfID := fs.Int64("shelf", 0, "shelf id")
		_ = fs.Parse(args)
		if *shelfID <= 0 {
			log.Fatal("shelf id is required")
		}

		var resp map[string]any
		if err := doJSON(ctx, client, http.MethodPost, fmt.Sprintf("%s/users/shelves/%d/rows", baseURL, *shelfID), token, nil, &resp); err != nil {
			log.Fatalf("add row failed: %v", err)
		}
		printJSON(resp)
	case "delete":
		fs := flag.NewFlagSet("rows delete", flag.ExitOnError)
		shelfID := fs.Int64("shelf", 0, "shelf id")
		row := fs.Int("row", -1, "row index (0-based)")
		_ = fs.Parse(args)
		if *shelfID <= 0 || *row < 0 {
			log.Fatal("shelf and row are required")
		}

		var resp map[string]any
		if err := doJSON(ctx, client, http.MethodDelete, fmt.Sprintf("%s/users/shelves/%d/rows/%d", baseURL, *shelfID, *row), token, nil, &resp); err != nil {
			log.Fatalf("delete row failed: %v", err)
		}
		printJSON(resp)
	default:
		log.Fatal("usage: bookify rows <add|delete>")
	}
}

func handleAnnotate(ctx context.Context, client *http.Client, baseURL, tokenPath, sub string, args []string) {
	token := mustToken(tokenPath)
	switch sub {
	case "set":
		fs := flag.NewFlagSet("annotate set", flag.ExitOnError)
		bookKey := fs.String("book", "", "book key (volume id or normalized title)")
		rating := fs.Int("rating", 0, "rating 0-5")
		review := fs.String("review", "", "review text")
		finished := fs.Bool("finished", false, "mark as finished now")
		_ = fs.Parse(args)
		if *bookKey == "" {
			log.Fatal("book key is required")
		}

		payload := map[string]any{"rating": *rating, "review": *review}
		if *finished {
			payload["finished_at"] = time.Now().Unix()
		}
		var resp map[string]any
		if err := doJSON(ctx, client, http.MethodPut, baseURL+"/annotations/"+url.PathEscape(*bookKey), token, payload, &resp); err != nil {
			log.Fatalf("set failed: %v", err)
		}
		printJSON(resp)
	case "show":
		fs := flag.NewFlagSet("annotate show", flag.ExitOnError)
		bookKey := fs.String("book", "", "book key")
		_ = fs.Parse(args)
		if *bookKey == "" {
			log.Fatal("book key is required")
		}

		var resp map[string]any
		if err := doJSON(ctx, client, http.MethodGet, baseURL+"/annotations/"+url.PathEscape(*bookKey), token, nil, &resp); err != nil {
			log.Fatalf("show failed: %v", err)
		}
		printJSON(resp)
	case "list":
		var resp map[string]any
		if err := doJSON(ctx, client, http.MethodGet, baseURL+"/annotations", token, nil, &resp); err != nil {
			log.Fatalf("list failed: %v", err)
		}
		printJSON(resp)
	case "delete":
		fs := flag.NewFlagSet("annotate delete", flag.ExitOnError)
		bookKey := fs.String("book", "", "book key")
		_ = fs.Parse(args)
		if *bookKey == "" {
			log.Fatal("book key is required")
		}

		var resp map[string]any
		if err := doJSON(ctx, client, http.MethodDelete, baseURL+"/annotations/"+url.PathEscape(*bookKey), token, nil, &resp); err != nil {
			log.Fatalf("delete failed: %v", err)
		}
		printJSON(resp)
	default:
		log.Fatal("usage: bookify annotate <set|show|list|delete>")
	}
}

func handleNotes(ctx context.Context, client *http.Client, baseURL, tokenPath, sub string, args []string) {
	token := mustToken(tokenPath)
	switch sub {
	case "add":
		fs := flag.NewFlagSet("notes add", flag.ExitOnError)
		bookKey := fs.String("book", "", "book key")
		page := fs.Int("page", 0, "page number")
		text := fs.String("text", "", "note text")
		_ = fs.Parse(args)
		if *bookKey == "" || *text == "" {
			log.Fatal("book key and text are required")
		}

		payload := map[string]any{"page": *page, "text": *text}
		var resp map[string]any
		if err := doJSON(ctx, client, http.MethodPost, baseURL+"/annotations/"+url.PathEscape(*bookKey)+"/notes", token, payload, &resp); err != nil {
			log.Fatalf("add note failed: %v", err)
		}
		printJSON(resp)
	case "list":
		fs := flag.NewFlagSet("notes list", flag.ExitOnError)
		bookKey := fs.String("book", "", "book key")
		limit := fs.Int("limit", 20, "page size")
		offset := fs.Int("offset", 0, "offset")
		_ = fs.Parse(args)
		if *bookKey == "" {
			log.Fatal("book key is required")
		}

		endpoint := fmt.Sprintf("%s/annotations/%s/notes?limit=%d&offset=%d",
			baseURL, url.PathEscape(*bookKey), *limit, *offset)
		var resp map[string]any
		if err := doJSON(ctx, client, http.MethodGet, endpoint, token, nil, &resp); err != nil {
			log.Fatalf("list notes failed: %v", err)
		}
		printJSON(resp)
	case "delete":
		fs := flag.NewFlagSet("notes delete", flag.ExitOnError)
		id := fs.String("id", "", "note id")
		_ = fs.Parse(args)
		if *id == "" {
			log.Fatal("note id is required")
		}

		var resp map[string]any
		if err := doJSON(ctx, client, http.MethodDelete, baseURL+"/notes/"+url.PathEscape(*id), token, nil, &resp); err != nil {
			log.Fatalf("delete note failed: %v", err)
		}
		printJSON(resp)
	default:
		log.Fatal("usage: bookify notes <add|list|delete>")
	}
}

func handleSync(sub string, args []string) {
	switch sub {
	case "listen":
		fs := flag.NewFlagSet("sync listen", flag.ExitOnError)
		addr := fs.String("addr", "127.0.0.1:7070", "TCP sync server address")
		pretty := fs.Bool("pretty", true, "pretty print JSON events")
		_ = fs.Parse(args)
		for {
			if err := runSyncTCP(*addr, *pretty); err != nil {
				log.Printf("[sync] disconnected: %v", err)
			}
			time.Sleep(1 * time.Second)
		}
	default:
		log.Fatal("usage: bookify sync listen")
	}
}

func handleNotify(baseURL, sub string, args []string) {
	switch sub {
	case "subscribe":
		fs := flag.NewFlagSet("notify subscribe", flag.ExitOnError)
		wsURL := fs.String("ws", "", "WebSocket URL (defaults to /ws on API host)")
		_ = fs.Parse(args)

		endpoint := *wsURL
		if endpoint == "" {
			var err error
			endpoint, err = websocketURL(baseURL, "/ws")
			if err != nil {
				log.Fatalf("ws url: %v", err)
			}
		}
		if err := runWebSocket(endpoint); err != nil {
			log.Fatalf("subscribe failed: %v", err)
		}
	default:
		log.Fatal("usage: bookify notify subscribe")
	}
}

func handleExport(ctx context.Context, client *http.Client, baseURL, tokenPath, sub string, args []string) {
	token := mustToken(tokenPath)
	switch sub {
	case "json":
		fs := flag.NewFlagSet("export json", flag.ExitOnError)
		out := fs.String("out", "data/shelf.json", "output JSON path")
		_ = fs.Parse(args)

		books, err := fetchMirror(ctx, client, baseURL, token)
		if err != nil {
			log.Fatalf("export json failed: %v", err)
		}
		if err := writeJSON(*out, books); err != nil {
			log.Fatalf("write json failed: %v", err)
		}
		log.Printf("✅ exported %d books to %s", len(books), *out)
	case "csv":
		fs := flag.NewFlagSet("export csv", flag.ExitOnError)
		out := fs.String("out", "data/shelf.csv", "output CSV path")
		_ = fs.Parse(args)

		books, err := fetchMirror(ctx, client, baseURL, token)
		if err != nil {
			log.Fatalf("export csv failed: %v", err)
		}
		if err := writeCSV(*out, books); err != nil {
			log.Fatalf("write csv failed: %v", err)
		}
		log.Printf("✅ exported %d books to %s", len(books), *out)
	default:
		log.Fatal("usage: bookify export <json|csv>")
	}
}

func runSyncTCP(addr string, pretty bool) error {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return fmt.Errorf("dial %s: %w", addr, err)
	}
	defer conn.Close()

	log.Printf("[sync] connected to %s", addr)
	reader := bufio.NewScanner(conn)
	for reader.Scan() {
		line := reader.Bytes()
		if !pretty {
			fmt.Println(string(line))
			continue
		}
		var obj map[string]any
		if err := json.Unmarshal(line, &obj); err != nil {
			fmt.Println(string(line))
			continue
		}
		b, _ := json.MarshalIndent(obj, "", "  ")
		fmt.Println(string(b))
	}
	if err := reader.Err(); err != nil {
		return err
	}
	return os.ErrClosed
}

func runWebSocket(wsURL string) error {
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		return err
	}
	defer conn.Close()
	log.Printf("[notify] connected to %s", wsURL)
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		fmt.Println(string(msg))
	}
}

func fetchMirror(ctx context.Context, client *http.Client, baseURL, token string) ([]models.Book, error) {
	var resp struct {
		Books []models.Book `json:"books"`
	}
	if err := doJSON(ctx, client, http.MethodGet, baseURL+"/users/shelf", token, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Books, nil
}

func writeJSON(path string, books []models.Book) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	b, err := json.MarshalIndent(books, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}

func writeCSV(path string, books []models.Book) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write([]string{
		"id", "title", "author", "genre", "page_count", "img",
	}); err != nil {
		return err
	}
	for _, b := range books {
		if err := writer.Write([]string{
			b.ID,
			b.Title,
			b.Author,
			b.Genre,
			fmt.Sprintf("%d", b.PageCount),
			b.Image,
		}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func doJSON(ctx context.Context, client *http.Client, method, endpoint, token string, payload any, out any) error {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = strings.NewReader(string(b))
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("%s %s failed: %s", method, endpoint, strings.TrimSpace(string(data)))
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return err
	}
	return nil
}

func printJSON(v any) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		log.Fatalf("json: %v", err)
	}
	fmt.Println(string(b))
}

func defaultTokenPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "./.bookify-token.json"
	}
	return filepath.Join(home, ".bookify", "token.json")
}

func saveToken(path, token string) error {
	if token == "" {
		return errors.New("empty token")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(tokenData{Token: token}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

func readToken(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	var td tokenData
	if err := json.Unmarshal(data, &td); err != nil {
		return "", err
	}
	return strings.TrimSpace(td.Token), nil
}

func mustToken(path string) string {
	token, err := readToken(path)
	if err != nil {
		log.Fatalf("token not found, please open a session: %v", err)
	}
	if token == "" {
		log.Fatal("token empty, please open a session")
	}
	return token
}

func clearToken(path string) error {
	if err := os.Remove(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	return nil
}

func websocketURL(baseURL, path string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", err
	}
	scheme := "ws"
	if u.Scheme == "https" {
		scheme = "wss"
	}
	return (&url.URL{
		Scheme: scheme,
		Host:   u.Host,
		Path:   path,
	}).String(), nil
}

func printUsage() {
	fmt.Println("bookify <command> [subcommand] [flags]")
	fmt.Println("commands:")
	fmt.Println("  session open|close")
	fmt.Println("  me show|update|email|theme|delete")
	fmt.Println("  catalog categories|feed|featured|search|microgenres")
	fmt.Println("  shelves list|create|show|current|switch")
	fmt.Println("  books add|remove|mirror")
	fmt.Println("  rows add|delete")
	fmt.Println("  annotate set|show|list|delete")
	fmt.Println("  notes add|list|delete")
	fmt.Println("  sync listen")
	fmt.Println("  notify subscribe")
	fmt.Println("  export json|csv")
}
