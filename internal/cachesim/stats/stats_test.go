package stats

import (
	"sync"
	"testing"

	"github.com/kolkov/cachesim/internal/cachesim/moesi"
	"github.com/stretchr/testify/require"
)

func TestRecordHitAndMissSeparatePids(t *testing.T) {
	s := New(2)
	s.RecordHit(0, moesi.PrRd)
	s.RecordHit(0, moesi.PrWr)
	s.RecordMiss(1, moesi.PrRd)

	got0 := s.Snapshot(0)
	require.Equal(t, PerProc{ReadHit: 1, WriteHit: 1}, got0)

	got1 := s.Snapshot(1)
	require.Equal(t, PerProc{ReadMiss: 1}, got1)
}

func TestRecordIsConcurrencySafe(t *testing.T) {
	s := New(1)
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.RecordHit(0, moesi.PrRd)
		}()
	}
	wg.Wait()
	require.Equal(t, uint64(100), s.Snapshot(0).ReadHit)
}

func TestReadsAndWritesSumHitAndMiss(t *testing.T) {
	p := PerProc{ReadHit: 3, ReadMiss: 2, WriteHit: 1, WriteMiss: 4}
	require.Equal(t, uint64(5), p.Reads())
	require.Equal(t, uint64(5), p.Writes())
}
