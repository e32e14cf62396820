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

	"trust-lab/domain"
)

//go:embed inspect.html
var templatesFS embed.FS

// InspectRow is one store entry rendered by the inspect page.
type InspectRow struct {
	Key       string
	Type      string
	Timestamp string
	Status    string
	Detail    string
	Score     string
}

type RowMapper func(key string, val []byte) InspectRow
type StatsProvider func() map[string]any

type PageData struct {
	Prefix string
	Items  []InspectRow
	Stats  map[string]any
}

// StartInspectServer serves a read-only HTML view over the raw store,
// for operators. Never exposed on the public port.
func StartInspectServer(db *badger.DB, port int, mapper RowMapper, statsProvider StatsProvider) {
	mux := http.NewServeMux()
	tmpl := template.Must(template.ParseFS(templatesFS, "inspect.html"))

	if mapper == nil {
		mapper = CommentMapper
	}

	mux.HandleFunc("/inspect", func(w http.ResponseWriter, r *http.Request) {
		prefix := r.URL.Query().Get("prefix")
		if prefix == "" {
			prefix = "comment:"
		}

		data := PageData{
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
					data.Items = append(data.Items, mapper(string(item.Key()), val))
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

// CommentMapper renders a stored comment row, shadow bans included.
func CommentMapper(key string, val []byte) InspectRow {
	row := rawRow(key, val)

	var comment domain.Comment
	if err := json.Unmarshal(val, &comment); err != nil {
		return row
	}
	row.Type = "COMMENT"
	row.Status = string(comment.Status)
	row.Detail = comment.Name + ": " + truncate(comment.Message, 80)
	row.Score = strconv.Itoa(comment.RiskScore)
	if !comment.CreatedAt.IsZero() {
		row.Timestamp = comment.CreatedAt.Format("15:04:05")
	}
	return row
}

// ContactMapper renders a stored contact message row.
func ContactMapper(key string, val []byte) InspectRow {
	row := rawRow(key, val)

	var message domain.ContactMessage
	if err := json.Unmarshal(val, &message); err != nil {
		return row
	}
	row.Type = "CONTACT"
	row.Status = "delivered"
	row.Detail = message.Identity + ": " + truncate(message.Message, 80)
	if !message.CreatedAt.IsZero() {
		row.Timestamp = message.CreatedAt.Format("15:04:05")
	}
	return row
}

func rawRow(key string, val []byte) InspectRow {
	row := InspectRow{
		Key:       key,
		Type:      "RAW",
		Timestamp: "--:--:--",
		Status:    "-",
		Detail:    "Size: " + strconv.Itoa(len(val)) + " bytes",
		Score:     "-",
	}
	parts := strings.Split(key, ":")
	if len(parts) >= 3 {
		if tsNano, err := strconv.ParseInt(parts[len(parts)-2], 10, 64); err == nil {
			row.Timestamp = time.Unix(0, tsNano).Format("15:04:05")
		}
	}
	return row
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "…"
}
