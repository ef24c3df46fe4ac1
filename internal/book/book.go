package book

import (
	"encoding/binary"
	"io"
	"math/rand"
	"os"
	"sort"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/chego/engine/internal/board"
)

// BookEntry represents a single book entry.
type BookEntry struct {
	Move   board.Move
	Weight uint16
}

// entryRecordSize is the on-disk size of one BookEntry: a 4-byte move plus
// a 2-byte weight, little-endian.
const entryRecordSize = 6

// Book is a Polyglot-format opening book. Entries are stored in Badger
// rather than a live Go map so a large book can be probed without holding
// every position in RAM.
type Book struct {
	db *badger.DB
}

// New creates an empty, in-memory book.
func New() *Book {
	opts := badger.DefaultOptions("").WithInMemory(true)
	opts.Logger = nil
	db, err := badger.Open(opts)
	if err != nil {
		// An in-memory instance has no filesystem dependency to fail on.
		panic(err)
	}
	return &Book{db: db}
}

// NewOnDisk creates a book backed by a Badger database at dir, so an
// indexed book survives process restarts instead of being re-parsed from
// the Polyglot file every time.
func NewOnDisk(dir string) (*Book, error) {
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil
	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return &Book{db: db}, nil
}

// Close releases the underlying database.
func (b *Book) Close() error {
	if b == nil || b.db == nil {
		return nil
	}
	return b.db.Close()
}

// LoadPolyglot loads a Polyglot format opening book from a file into a new
// in-memory Book.
func LoadPolyglot(filename string) (*Book, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return LoadPolyglotReader(file)
}

// LoadPolyglotReader loads a Polyglot format book from a reader into a new
// in-memory Book.
func LoadPolyglotReader(r io.Reader) (*Book, error) {
	b := New()
	if err := b.IngestPolyglot(r); err != nil {
		b.Close()
		return nil, err
	}
	return b, nil
}

// IngestPolyglot reads Polyglot entries from r and merges them into an
// already-open book, so a persistent on-disk book can be built up once
// from a book file and reused across runs.
//
// Polyglot entry format:
// 8 bytes: position key (big-endian)
// 2 bytes: move (big-endian)
// 2 bytes: weight (big-endian)
// 4 bytes: learn data (ignored)
func (b *Book) IngestPolyglot(r io.Reader) error {
	var entry [16]byte

	txn := b.db.NewTransaction(true)
	defer txn.Discard()

	commit := func() error {
		if err := txn.Commit(); err != nil {
			return err
		}
		txn = b.db.NewTransaction(true)
		return nil
	}

	count := 0
	for {
		_, err := io.ReadFull(r, entry[:])
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}

		key := binary.BigEndian.Uint64(entry[0:8])
		moveData := binary.BigEndian.Uint16(entry[8:10])
		weight := binary.BigEndian.Uint16(entry[10:12])

		move := decodePolyglotMove(moveData)
		if move == board.NoMove {
			continue
		}

		keyBytes := make([]byte, 8)
		binary.BigEndian.PutUint64(keyBytes, key)

		var existing []byte
		item, err := txn.Get(keyBytes)
		switch err {
		case nil:
			existing, err = item.ValueCopy(nil)
			if err != nil {
				return err
			}
		case badger.ErrKeyNotFound:
		default:
			return err
		}

		rec := make([]byte, entryRecordSize)
		binary.LittleEndian.PutUint32(rec[0:4], uint32(move))
		binary.LittleEndian.PutUint16(rec[4:6], weight)

		if setErr := txn.Set(keyBytes, append(existing, rec...)); setErr != nil {
			if setErr != badger.ErrTxnTooBig {
				return setErr
			}
			if err := commit(); err != nil {
				return err
			}
			if err := txn.Set(keyBytes, append(existing, rec...)); err != nil {
				return err
			}
		}

		count++
		if count%10000 == 0 {
			if err := commit(); err != nil {
				return err
			}
		}
	}

	return txn.Commit()
}

// decodePolyglotMove converts a Polyglot move encoding to our Move type.
// Polyglot move format (bits):
// 0-5: to square
// 6-11: from square
// 12-14: promotion piece (0=none, 1=knight, 2=bishop, 3=rook, 4=queen)
func decodePolyglotMove(data uint16) board.Move {
	toFile := data & 7
	toRank := (data >> 3) & 7
	fromFile := (data >> 6) & 7
	fromRank := (data >> 9) & 7
	promo := (data >> 12) & 7

	from := board.NewSquare(int(fromFile), int(fromRank))
	to := board.NewSquare(int(toFile), int(toRank))

	// Polyglot encodes castling as king-captures-own-rook, the same shape
	// our internal Move encoding uses, so it needs no translation — just
	// recognizing it and building it through NewCastling.
	if (from == board.E1 && to == board.H1) || (from == board.E1 && to == board.A1) ||
		(from == board.E8 && to == board.H8) || (from == board.E8 && to == board.A8) {
		kingSide := to == board.H1 || to == board.H8
		return board.NewCastling(from, to, kingSide)
	}

	if promo > 0 {
		// Promotion pieces: 1=knight, 2=bishop, 3=rook, 4=queen
		promoTypes := []board.PieceType{0, board.Knight, board.Bishop, board.Rook, board.Queen}
		return board.NewPromotion(from, to, promoTypes[promo])
	}

	return board.NewMove(from, to)
}

func decodeEntries(data []byte) []BookEntry {
	n := len(data) / entryRecordSize
	out := make([]BookEntry, 0, n)
	for i := 0; i < n; i++ {
		off := i * entryRecordSize
		move := board.Move(binary.LittleEndian.Uint32(data[off : off+4]))
		weight := binary.LittleEndian.Uint16(data[off+4 : off+6])
		out = append(out, BookEntry{Move: move, Weight: weight})
	}
	return out
}

func (b *Book) lookup(key uint64) []BookEntry {
	if b == nil || b.db == nil {
		return nil
	}

	keyBytes := make([]byte, 8)
	binary.BigEndian.PutUint64(keyBytes, key)

	var entries []BookEntry
	_ = b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(keyBytes)
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			entries = decodeEntries(val)
			return nil
		})
	})

	return entries
}

// Probe looks up a position in the book and returns a move using weighted random selection.
func (b *Book) Probe(pos *board.Position) (board.Move, bool) {
	if b == nil {
		return board.NoMove, false
	}

	entries := b.lookup(pos.PolyglotHash())
	if len(entries) == 0 {
		return board.NoMove, false
	}

	// Sort by weight (highest first) for deterministic ordering
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Weight > entries[j].Weight
	})

	// Weighted random selection
	totalWeight := uint32(0)
	for _, e := range entries {
		totalWeight += uint32(e.Weight)
	}

	if totalWeight == 0 {
		// All weights are 0, just pick the first
		return verifyAndConvert(pos, entries[0].Move), true
	}

	r := rand.Uint32() % totalWeight
	cumulative := uint32(0)
	for _, e := range entries {
		cumulative += uint32(e.Weight)
		if r < cumulative {
			return verifyAndConvert(pos, e.Move), true
		}
	}

	// Fallback to first entry
	return verifyAndConvert(pos, entries[0].Move), true
}

// ProbeAll returns all book moves for the position, sorted by weight.
func (b *Book) ProbeAll(pos *board.Position) []BookEntry {
	if b == nil {
		return nil
	}

	entries := b.lookup(pos.PolyglotHash())
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Weight > entries[j].Weight
	})

	return entries
}

// verifyAndConvert ensures the move is legal and adjusts flags if needed.
func verifyAndConvert(pos *board.Position, move board.Move) board.Move {
	// Find the matching legal move to get correct flags (castling, en passant, etc.)
	legalMoves := pos.GenerateLegalMoves()
	from := move.From()
	to := move.To()

	for i := 0; i < legalMoves.Len(); i++ {
		lm := legalMoves.Get(i)
		if lm.From() == from && lm.To() == to {
			// For promotions, match the promotion piece
			if move.IsPromotion() && lm.IsPromotion() {
				if move.Promotion() == lm.Promotion() {
					return lm
				}
			} else if !move.IsPromotion() && !lm.IsPromotion() {
				return lm
			}
		}
	}

	return board.NoMove
}

// Size returns the number of unique positions in the book.
func (b *Book) Size() int {
	if b == nil || b.db == nil {
		return 0
	}

	count := 0
	_ = b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			count++
		}
		return nil
	})

	return count
}
