package internal

import (
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
)

//go:embed inspect.html
var templatesFS embed.FS

// InspectRow is one store entry rendered on the inspection page.
type InspectRow struct {
	Key       string
	Kind      string
	Timestamp string
	ChatID    string
	Detail    string
}

type StatsProvider func() map[string]any

type pageData struct {
	Prefix string
	Items  []InspectRow
	Stats  map[string]any
}

// StartDebugServer exposes a read-only view of the chat store for local
// debugging. It scans the requested key prefix ("msg:" by default) and
// renders each entry according to its namespace.
func StartDebugServer(db *badger.DB, port int, statsProvider StatsProvider) {
	mux := http.NewServeMux()
	tmpl := template.Must(template.ParseFS(templatesFS, "inspect.html"))

	mux.HandleFunc("/inspect", func(w http.ResponseWriter, r *http.Request) {
		prefix := r.URL.Query().Get("prefix")
		if prefix == "" {
			prefix = "msg:"
		}

		data := pageData{
			Prefix: prefix,
			Stats:  make(map[string]any),
		}
		if statsProvider != nil {
			data.Stats = statsProvider()
		}

		_ = db.View(func(txn *badger.Txn) error {
			it := txn.NewIterator(badger.DefaultIteratorOptions)
			defer it.Close()
			for it.Seek([]byte(prefix)); it.ValidForPrefix([]byte(prefix)); it.Next() {
				item := it.Item()
				_ = item.Value(func(val []byte) error {
					data.Items = append(data.Items, mapRow(string(item.Key()), val))
					return nil
				})
			}
			return nil
		})

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_ = tmpl.Execute(w, data)
	})

	go func() {
		_ = http.ListenAndServe(fmt.Sprintf("0.0.0.0:%d", port), mux)
	}()
}

// mapRow interprets an entry by its key namespace. Message keys carry their
// timestamp in the key itself; everything else falls back to a raw view.
func mapRow(key string, val []byte) InspectRow {
	parts := strings.Split(key, ":")
	row := InspectRow{
		Key:    key,
		Kind:   "RAW",
		Detail: "Size: " + strconv.Itoa(len(val)) + " bytes",
	}

	switch parts[0] {
	case "msg":
		if len(parts) >= 4 {
			row.Kind = "MESSAGE"
			row.ChatID = parts[1]
			if tsNano, err := strconv.ParseInt(parts[2], 10, 64); err == nil {
				row.Timestamp = time.Unix(0, tsNano).UTC().Format("15:04:05")
			}
			var stored struct {
				Sender  string `json:"sender"`
				Content string `json:"content"`
			}
			if err := json.Unmarshal(val, &stored); err == nil {
				row.Detail = stored.Sender + ": " + stored.Content
			}
		}
	case "chat":
		row.Kind = "CHAT"
		if len(parts) >= 2 {
			row.ChatID = parts[1]
		}
		row.Detail = string(val)
	case "part":
		row.Kind = "PARTICIPANT"
		if len(parts) >= 3 {
			row.ChatID = parts[1]
			row.Detail = parts[2] + " " + string(val)
		}
	case "direct":
		row.Kind = "DIRECT-INDEX"
		row.Detail = "chat " + string(val)
	case "user":
		row.Kind = "USER"
	}
	return row
}
