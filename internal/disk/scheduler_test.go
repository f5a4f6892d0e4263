package disk

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/pagekit-db/pagekit/internal/page"
	"github.com/pagekit-db/pagekit/internal/pageid"
	"github.com/stretchr/testify/require"
)

func tempFileManager(t *testing.T, pages int) *FileManager {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, fmt.Sprintf("pagekit-test-%d.dat", rand.Intn(1_000_000)))
	fm, err := NewFileManager(path, pages)
	require.NoError(t, err)
	t.Cleanup(func() { _ = fm.Close() })
	os.Remove(path)
	return fm
}

func TestSchedulerWriteThenRead(t *testing.T) {
	fm := tempFileManager(t, 4)
	sched := NewScheduler(fm, 4)
	defer sched.Close()

	p := page.New(pageid.PageID(0))
	copy(p.Data[:], []byte("persisted"))

	wreq := NewRequest(0, true, p)
	sched.Schedule(wreq)
	require.True(t, <-wreq.Done)

	out := page.New(0)
	rreq := NewRequest(0, false, out)
	sched.Schedule(rreq)
	require.True(t, <-rreq.Done)
	require.Equal(t, "persisted", string(out.Data[:9]))
}

func TestSchedulerTreatsInvalidPageAsNoOp(t *testing.T) {
	fm := tempFileManager(t, 1)
	sched := NewScheduler(fm, 1)
	defer sched.Close()

	req := NewRequest(pageid.Invalid, true, page.New(pageid.Invalid))
	sched.Schedule(req)
	require.True(t, <-req.Done)
}
