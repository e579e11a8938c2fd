package smith

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/reportsmith/reportsmith/pkg/pbir"
	"github.com/stretchr/testify/require"
)

func TestWatchPicksUpExternalChanges(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx, cancel := context.WithCancel(t.Context())
	done := make(chan error, 1)
	go func() { done <- Watch(ctx, s) }()

	// A report appears on disk behind the store's back.
	_, err := pbir.LoadReport(t.Context(), filepath.Join(s.Root(), "fresh"), pbir.WithBaseline(s.baseline))
	require.NoError(t, err)

	// Keep poking the tree so a watcher that came up after the initial
	// burst still sees an event.
	require.Eventually(t, func() bool {
		_ = os.WriteFile(filepath.Join(s.Root(), "fresh", "touch.txt"), []byte("ping"), 0o644)
		_, err := s.Get("fresh")
		return err == nil
	}, 10*time.Second, 100*time.Millisecond, "the watcher must register the new report")

	require.NoError(t, os.RemoveAll(filepath.Join(s.Root(), "fresh")))
	require.Eventually(t, func() bool {
		_, err := s.Get("fresh")
		return pbir.IsNotExist(err)
	}, 10*time.Second, 100*time.Millisecond, "the watcher must drop the removed report")

	cancel()
	require.ErrorIs(t, <-done, context.Canceled)
}

func TestReportNameForPath(t *testing.T) {
	t.Parallel()

	root := filepath.Join("srv", "reports")
	cases := []struct {
		name string
		path string
		want string
		ok   bool
	}{
		{"report_folder", filepath.Join(root, "sales"), "sales", true},
		{"nested_file", filepath.Join(root, "sales", "sales.Report", "definition.pbir"), "sales", true},
		{"root_itself", root, "", false},
		{"outside_root", filepath.Join("srv", "other"), "", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, ok := reportNameForPath(root, tc.path)
			require.Equal(t, tc.ok, ok)
			require.Equal(t, tc.want, got)
		})
	}
}
