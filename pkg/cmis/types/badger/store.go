package badger

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"sort"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
	"github.com/marmos91/filebridge/pkg/cmis"
)

// Key Namespace
// =============
//
// Prefix   Key Format        Value
// ==========================================================
// "type:"  type:<typeID>     typeRecord (JSON)
// "seq:"   seq:types         uint64 (big endian), last sequence used
//
// Records carry a sequence number so definitions can be replayed in
// registration order: a subtype is always stored after its parent.
const (
	prefixType = "type:"
	keySeq     = "seq:types"
)

func typeKey(id string) []byte {
	return []byte(prefixType + id)
}

// typeRecord is the stored form of a registration.
type typeRecord struct {
	Seq  uint64               `json:"seq"`
	Type *cmis.TypeDefinition `json:"type"`
}

// Config configures the BadgerDB type store.
type Config struct {
	// DBPath is the directory where BadgerDB stores its files
	DBPath string `mapstructure:"db_path"`

	// InMemory runs BadgerDB without touching disk (DBPath is ignored)
	InMemory bool `mapstructure:"in_memory"`

	// BlockCacheSizeMB is BadgerDB's block cache size in MB (default: 16)
	BlockCacheSizeMB int64 `mapstructure:"block_cache_size_mb"`
}

// Store persists custom type definitions in BadgerDB.
type Store struct {
	db *badger.DB
}

// New opens (or creates) the store described by config.
func New(ctx context.Context, config Config) (*Store, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if config.DBPath == "" && !config.InMemory {
		return nil, fmt.Errorf("badger type store: db_path is required")
	}

	opts := badger.DefaultOptions(config.DBPath)
	if config.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	}

	// Type definitions are few and small
	opts = opts.WithLoggingLevel(badger.WARNING)
	opts = opts.WithCompression(options.None)

	blockCacheMB := config.BlockCacheSizeMB
	if blockCacheMB == 0 {
		blockCacheMB = 16
	}
	opts = opts.WithBlockCacheSize(blockCacheMB << 20)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open BadgerDB at %s: %w", config.DBPath, err)
	}

	return &Store{db: db}, nil
}

// LoadTypes returns every stored definition ordered by registration.
func (s *Store) LoadTypes(ctx context.Context) ([]*cmis.TypeDefinition, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var records []typeRecord
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(prefixType)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			err := it.Item().Value(func(val []byte) error {
				var rec typeRecord
				if err := json.Unmarshal(val, &rec); err != nil {
					return fmt.Errorf("failed to decode type %s: %w", it.Item().Key(), err)
				}
				records = append(records, rec)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(records, func(i, j int) bool { return records[i].Seq < records[j].Seq })

	defs := make([]*cmis.TypeDefinition, 0, len(records))
	for _, rec := range records {
		defs = append(defs, rec.Type)
	}
	return defs, nil
}

// SaveType stores def under the next sequence number.
func (s *Store) SaveType(ctx context.Context, def *cmis.TypeDefinition) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		seq, err := nextSeq(txn)
		if err != nil {
			return err
		}

		data, err := json.Marshal(typeRecord{Seq: seq, Type: def})
		if err != nil {
			return fmt.Errorf("failed to encode type %q: %w", def.ID, err)
		}
		return txn.Set(typeKey(def.ID), data)
	})
}

func nextSeq(txn *badger.Txn) (uint64, error) {
	var seq uint64
	item, err := txn.Get([]byte(keySeq))
	switch {
	case err == badger.ErrKeyNotFound:
	case err != nil:
		return 0, err
	default:
		if err := item.Value(func(val []byte) error {
			if len(val) != 8 {
				return fmt.Errorf("corrupt sequence value")
			}
			seq = binary.BigEndian.Uint64(val)
			return nil
		}); err != nil {
			return 0, err
		}
	}

	seq++
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, seq)
	if err := txn.Set([]byte(keySeq), buf); err != nil {
		return 0, err
	}
	return seq, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}
