package store

import (
	"database/sql"
	"fmt"
	"sort"
	"sync"

	sqlitevec "github.com/asg017/sqlite-vec-go-bindings/ncruces"
)

// StatIndex ranks characters by how close their stat profiles are, using the
// sqlite-vec vec_distance_l2 function on an in-memory connection.
type StatIndex struct {
	mu sync.Mutex
	db *sql.DB
}

// NewStatIndex opens the in-memory connection and checks that the vector
// extension is loaded.
func NewStatIndex() (*StatIndex, error) {
	db, err := openSQLite(":memory:")
	if err != nil {
		return nil, err
	}
	var version string
	if err := db.QueryRow(`SELECT vec_version()`).Scan(&version); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite-vec unavailable: %w", err)
	}
	return &StatIndex{db: db}, nil
}

// Nearest returns up to k other characters closest to id. Distances are taken
// over the target's own stat names; a stat the other character lacks, or
// holds as unknown, counts as DefaultStat. Ties keep roster order. A target
// without stats, or missing from roster, has no neighbours.
func (x *StatIndex) Nearest(roster []*Character, id string, k int) ([]Neighbor, error) {
	if k <= 0 {
		return nil, nil
	}
	var target *Character
	for _, c := range roster {
		if c.ID == id {
			target = c
			break
		}
	}
	if target == nil || target.Stats.Len() == 0 {
		return nil, nil
	}

	names := target.Stats.Names()
	from, err := statVector(target.Stats, names)
	if err != nil {
		return nil, err
	}

	x.mu.Lock()
	defer x.mu.Unlock()

	out := make([]Neighbor, 0, len(roster))
	for _, c := range roster {
		if c.ID == id {
			continue
		}
		to, err := statVector(c.Stats, names)
		if err != nil {
			return nil, err
		}
		var d float64
		if err := x.db.QueryRow(`SELECT vec_distance_l2(?, ?)`, from, to).Scan(&d); err != nil {
			return nil, fmt.Errorf("distance %s -> %s: %w", id, c.ID, err)
		}
		out = append(out, Neighbor{ID: c.ID, Name: c.Name, Distance: d})
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Distance < out[j].Distance })
	if len(out) > k {
		out = out[:k]
	}
	return out, nil
}

// Close closes the connection.
func (x *StatIndex) Close() error {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.db.Close()
}

// statVector serializes stats over names as a float32 vector blob.
func statVector(s Stats, names []string) ([]byte, error) {
	vec := make([]float32, len(names))
	for i, name := range names {
		vec[i] = DefaultStat
		if v, ok := s.Get(name); ok {
			if n, known := v.Score(); known {
				vec[i] = float32(n)
			}
		}
	}
	return sqlitevec.SerializeFloat32(vec)
}
