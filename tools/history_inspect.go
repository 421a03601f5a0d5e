// Command history_inspect dumps the persisted message history of a chat as a
// table, straight from the Badger store. Useful while the server is running:
// the database opens read-only and bypasses the lock guard.
package main

import (
	"encoding/json"
	"flag"
	"log"
	"os"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/gookit/color"
	"github.com/mama165/sdk-go/database"
	"github.com/olekukonko/tablewriter"
)

func main() {
	dbPath := flag.String("db", database.DefaultPath, "Path to badger DB")
	chatID := flag.String("chat", "", "Chat id to dump; empty dumps every chat")
	flag.Parse()

	db, err := openDB(*dbPath)
	if err != nil {
		log.Fatal("Error while opening Badger: ", err)
	}
	defer db.Close()

	prefix := "msg:"
	if *chatID != "" {
		prefix = "msg:" + *chatID + ":"
	}
	color.Cyan.Printf("Scanning %q in %s\n", prefix, *dbPath)

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Time", "Chat", "Sender", "Content"})
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

	count := 0
	err = db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefixBytes := []byte(prefix)
		for it.Seek(prefixBytes); it.ValidForPrefix(prefixBytes); it.Next() {
			err := it.Item().Value(func(v []byte) error {
				var stored struct {
					ChatID  string `json:"chat_id"`
					Sender  string `json:"sender"`
					Content string `json:"content"`
					At      int64  `json:"at"`
				}
				if err := json.Unmarshal(v, &stored); err != nil {
					color.Yellow.Printf("Skipping unreadable key %s: %v\n", it.Item().Key(), err)
					return nil
				}
				table.Append([]string{
					time.Unix(0, stored.At).UTC().Format(time.RFC3339),
					stored.ChatID,
					stored.Sender,
					stored.Content,
				})
				count++
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		log.Fatal("Scan failed: ", err)
	}

	table.Render()
	color.Green.Printf("%d message(s)\n", count)
}

func openDB(path string) (*badger.DB, error) {
	options := badger.DefaultOptions(path).
		WithReadOnly(true).
		WithBypassLockGuard(true).
		WithLoggingLevel(badger.WARNING)
	return badger.Open(options)
}
