package recorder

import (
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
)

// maxFileID bounds the random session suffix: ids are drawn from [0, maxFileID).
const maxFileID = 1000

// Namer picks session file names of the form <dir>/<base>_<id>.csv.
type Namer struct {
	Dir  string
	Base string
	// Retries is how many times a colliding name is re-rolled. Each re-roll
	// draws an id not tried before. The name drawn last is used even if it
	// also exists; appending to it is accepted.
	Retries int
	Intn    func(n int) int
}

func (n Namer) Path(id int) string {
	return filepath.Join(n.Dir, fmt.Sprintf("%s_%d.csv", n.Base, id))
}

// Next returns a candidate path and its id.
func (n Namer) Next() (string, int) {
	intn := n.Intn
	if intn == nil {
		intn = rand.IntN
	}

	id := intn(maxFileID)
	path := n.Path(id)
	tried := map[int]bool{id: true}
	for i := 0; i < n.Retries && len(tried) < maxFileID && exists(path); i++ {
		for tried[id] {
			id = intn(maxFileID)
		}
		tried[id] = true
		path = n.Path(id)
	}
	return path, id
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
