package sink

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"access-error-service/internal/domain"
)

func record(id string, lines int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "2024-02-12T15:19:21Z [%s] Access Error:\n-----\n", id)
	for i := 0; i < lines; i++ {
		fmt.Fprintf(&b, "    [KEY_%d] --> [%s]\n", i, id)
	}
	b.WriteString("-----\n")
	return b.String()
}

func TestFileSink_Append(t *testing.T) {
	path := filepath.Join(t.TempDir(), "access-error.log")
	s := NewFileSink(path)

	require.NoError(t, s.Append(context.Background(), &domain.AccessDenialEvent{}, record("a", 1)))
	require.NoError(t, s.Append(context.Background(), &domain.AccessDenialEvent{}, record("b", 1)))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, record("a", 1)+record("b", 1), string(data))
	assert.Equal(t, "file", s.Name())
}

func TestFileSink_Append_Unwritable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing-dir", "access-error.log")
	s := NewFileSink(path)

	err := s.Append(context.Background(), &domain.AccessDenialEvent{}, record("a", 1))

	assert.True(t, errors.Is(err, domain.ErrLogSinkUnavailable))
	assert.Contains(t, err.Error(), path)
}

func TestFileSink_Append_ConcurrentNoInterleave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "access-error.log")
	s := NewFileSink(path)

	const workers = 20
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("id-%02d", i)
			assert.NoError(t, s.Append(context.Background(), &domain.AccessDenialEvent{}, record(id, 30)))
		}(i)
	}
	wg.Wait()

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	// 各イベントの行は連続していなければならない
	lines := strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
	require.Len(t, lines, workers*33)
	for start := 0; start < len(lines); start += 33 {
		header := lines[start]
		require.True(t, strings.HasSuffix(header, "Access Error:"), "unexpected header %q", header)
		id := header[strings.Index(header, "[")+1 : strings.Index(header, "]")]
		for _, line := range lines[start+2 : start+32] {
			assert.True(t, strings.HasSuffix(line, "["+id+"]"), "line %q does not belong to %s", line, id)
		}
	}
}
