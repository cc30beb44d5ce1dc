// Command rchain-trie opens a badger-backed trie and exercises initialize,
// insert, and lookup against it from the command line.
package main

import (
	"flag"
	"fmt"
	"os"

	log "github.com/ChainSafe/log15"

	"github.com/guardbotmk3/rchain/trie"
)

var logger = log.New("cmd", "rchain-trie")

func main() {
	if err := run(os.Args[1:]); err != nil {
		logger.Error("command failed", "error", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	fs := flag.NewFlagSet("rchain-trie", flag.ExitOnError)
	dbPath := fs.String("db", "", "badger database directory (empty for in-memory)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	rest := fs.Args()
	if len(rest) == 0 {
		return fmt.Errorf("usage: rchain-trie -db <path> <init|put|get> [args...]")
	}

	store, err := openStore(*dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	t := trie.New[[]byte, []byte](store, trie.BytesCodec(), trie.BytesCodec())

	switch rest[0] {
	case "init":
		root, err := t.Initialize()
		if err != nil {
			return err
		}
		logger.Info("initialized trie", "root", root)
		return nil

	case "put":
		if len(rest) != 3 {
			return fmt.Errorf("usage: rchain-trie -db <path> put <key> <value>")
		}
		if err := ensureInitialized(t, store); err != nil {
			return err
		}
		key := fixedWidthKey(rest[1])
		if err := t.Insert(key, []byte(rest[2])); err != nil {
			return err
		}
		logger.Info("inserted", "root", store.Root().Peek())
		return nil

	case "get":
		if len(rest) != 2 {
			return fmt.Errorf("usage: rchain-trie -db <path> get <key>")
		}
		if err := ensureInitialized(t, store); err != nil {
			return err
		}
		key := fixedWidthKey(rest[1])
		val, found, err := t.Lookup(key)
		if err != nil {
			return err
		}
		if !found {
			fmt.Println("<not found>")
			return nil
		}
		fmt.Println(string(val))
		return nil

	default:
		return fmt.Errorf("unknown subcommand %q", rest[0])
	}
}

func openStore(path string) (*trie.BadgerStore, error) {
	if path == "" {
		return trie.OpenInMemoryBadgerStore()
	}
	return trie.OpenBadgerStore(path)
}

// ensureInitialized runs Initialize the first time put or get touches a
// store that has no persisted root yet (a brand new database, or one
// opened before any init/put ever ran), so a fresh -db path works with
// put/get directly instead of requiring a separate init invocation.
func ensureInitialized(t *trie.Trie[[]byte, []byte], store *trie.BadgerStore) error {
	if store.Root().Peek() != trie.ZeroHash {
		return nil
	}
	_, err := t.Initialize()
	return err
}

// fixedWidthKey pads or truncates s to a fixed 32-byte key so every key
// passed on the command line shares one encoded length, as the trie
// requires.
func fixedWidthKey(s string) []byte {
	const width = 32
	b := make([]byte, width)
	copy(b, s)
	return b
}
