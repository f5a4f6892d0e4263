// Command pagekitctl is a small demo driver that exercises the buffer
// pool manager and the trie.
package main

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/pagekit-db/pagekit/internal/buffer"
	"github.com/pagekit-db/pagekit/internal/dbglog"
	"github.com/pagekit-db/pagekit/internal/disk"
	"github.com/pagekit-db/pagekit/internal/trie"
)

func main() {
	runID := uuid.New()
	log := dbglog.WithField("run", runID.String())

	dir, err := os.MkdirTemp("", "pagekit-demo-")
	if err != nil {
		log.Fatalf("create temp dir: %v", err)
	}
	defer os.RemoveAll(dir)

	fm, err := disk.NewFileManager(dir+"/pagekit.dat", 8)
	if err != nil {
		log.Fatalf("open page file: %v", err)
	}
	defer fm.Close()

	sched := disk.NewScheduler(fm, 4)
	defer sched.Close()

	bp := buffer.New(4, 2, sched)

	id, guard, ok := bp.NewPageGuarded()
	if !ok {
		log.Fatalf("buffer pool exhausted on first page")
	}
	copy(guard.Page().Data[:], []byte("pagekit demo payload"))
	guard.MarkDirty()
	guard.Drop()
	bp.FlushPage(id)

	t := trie.New()
	t = trie.Put(t, "pages_written", 1)
	t = trie.Put(t, "pages_written/last_id", int64(id))

	if v, ok := trie.Get[int](t, "pages_written"); ok {
		fmt.Printf("pages written: %d (page id %d)\n", v, id)
	}

	log.Infof("demo complete")
}
