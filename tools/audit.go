// Audit CLI: prints recent stored comments, shadow bans included, so an
// operator can review what the pipeline let through and what it hid.
//
// Usage:
//
//	go run ./tools -db /var/lib/trust-lab/badger -slug go-generics
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/gookit/color"
	"github.com/olekukonko/tablewriter"

	"trust-lab/domain"
)

func main() {
	dbPath := flag.String("db", "./badger", "Path to badger DB")
	slug := flag.String("slug", "", "Only show comments for this post slug")
	contacts := flag.Bool("contacts", false, "Show contact inbox instead of comments")
	flag.Parse()

	db, err := openDB(*dbPath)
	if err != nil {
		log.Fatal("Error while opening Badger: ", err)
	}
	defer db.Close()

	if *contacts {
		if err := renderContacts(db); err != nil {
			log.Fatal(err)
		}
		return
	}
	if err := renderComments(db, *slug); err != nil {
		log.Fatal(err)
	}
}

func renderComments(db *badger.DB, slug string) error {
	table := newTable([]string{"Key", "Post", "Name", "Status", "Score", "Reasons", "Message"})

	prefix := []byte("comment:")
	if slug != "" {
		prefix = []byte("comment:" + slug + ":")
	}

	err := db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			err := item.Value(func(v []byte) error {
				var comment domain.Comment
				if err := json.Unmarshal(v, &comment); err != nil {
					fmt.Printf("Error unmarshaling key %s: %v\n", string(item.Key()), err)
					return nil
				}

				status := string(comment.Status)
				if comment.Status == domain.StatusShadowBanned {
					status = color.New(color.BgBlack, color.FgYellow).Render(status)
				} else {
					status = color.New(color.BgBlack, color.FgGreen).Render(status)
				}

				table.Append([]string{
					string(item.Key()),
					comment.PostSlug,
					comment.Name,
					status,
					strconv.Itoa(comment.RiskScore),
					strings.Join(comment.Reasons, "; "),
					truncate(comment.Message, 60),
				})
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	table.Render()
	return nil
}

func renderContacts(db *badger.DB) error {
	table := newTable([]string{"Key", "From", "Reply To", "Message"})

	err := db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte("contact:")
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			err := item.Value(func(v []byte) error {
				var message domain.ContactMessage
				if err := json.Unmarshal(v, &message); err != nil {
					fmt.Printf("Error unmarshaling key %s: %v\n", string(item.Key()), err)
					return nil
				}
				table.Append([]string{
					string(item.Key()),
					message.Identity,
					message.ReplyAddress,
					truncate(message.Message, 70),
				})
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	table.Render()
	return nil
}

func newTable(headers []string) *tablewriter.Table {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader(headers)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")
	return table
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}

func openDB(path string) (*badger.DB, error) {
	opts := badger.DefaultOptions(path).
		WithReadOnly(true).
		WithLogger(nil).
		WithBypassLockGuard(true)
	return badger.Open(opts)
}
