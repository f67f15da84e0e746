package duty_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/example/duty-reconciler/internal/duty"
)

type recordingWriter struct {
	batches [][]duty.Mutation
	failOn  map[int]error
}

func (w *recordingWriter) Apply(_ context.Context, mutations []duty.Mutation) error {
	call := len(w.batches)
	w.batches = append(w.batches, append([]duty.Mutation(nil), mutations...))
	if err, ok := w.failOn[call]; ok {
		return err
	}
	return nil
}

func roleMutations(n int) []duty.Mutation {
	mutations := make([]duty.Mutation, 0, n)
	for i := 0; i < n; i++ {
		mutations = append(mutations, duty.Mutation{
			UserID: fmt.Sprintf("user-%d", i),
			Fields: map[string]any{duty.FieldRole: string(duty.RoleWorker)},
		})
	}
	return mutations
}

func TestCommitter_ChunksAtLimit(t *testing.T) {
	t.Parallel()

	writer := &recordingWriter{}
	committer := duty.NewCommitter(writer, 2, nil)

	stats := committer.Commit(context.Background(), roleMutations(5))

	assert.Equal(t, 3, stats.Batches)
	assert.Equal(t, 0, stats.Failed)
	assert.Equal(t, 5, stats.Applied)
	assert.Len(t, writer.batches, 3)
	assert.Len(t, writer.batches[0], 2)
	assert.Len(t, writer.batches[1], 2)
	assert.Len(t, writer.batches[2], 1)
}

func TestCommitter_FailedBatchDoesNotRollBackOthers(t *testing.T) {
	t.Parallel()

	writer := &recordingWriter{failOn: map[int]error{1: errors.New("store unavailable")}}
	committer := duty.NewCommitter(writer, 2, nil)

	stats := committer.Commit(context.Background(), roleMutations(5))

	assert.Equal(t, 3, stats.Batches)
	assert.Equal(t, 1, stats.Failed)
	assert.Equal(t, 3, stats.Applied)
}

func TestCommitter_EmptyListCommitsNothing(t *testing.T) {
	t.Parallel()

	writer := &recordingWriter{}
	committer := duty.NewCommitter(writer, 2, nil)

	stats := committer.Commit(context.Background(), nil)

	assert.Equal(t, duty.CommitStats{}, stats)
	assert.Empty(t, writer.batches)
}

func TestCommitter_LimitFallsBackToStoreCeiling(t *testing.T) {
	t.Parallel()

	writer := &recordingWriter{}
	committer := duty.NewCommitter(writer, 10_000, nil)

	stats := committer.Commit(context.Background(), roleMutations(duty.DefaultBatchLimit+1))

	assert.Equal(t, 2, stats.Batches)
	assert.Len(t, writer.batches[0], duty.DefaultBatchLimit)
	assert.Len(t, writer.batches[1], 1)
}
