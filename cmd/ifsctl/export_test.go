package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/natserract/infusionsoft/pkg/infusionsoft/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// fakeContacts serves total contacts with sequential ids.
type fakeContacts struct {
	total  int
	failOn int

	mu    sync.Mutex
	pages []int
}

func (f *fakeContacts) Count(_ context.Context, table string, _ map[string]any) (int, error) {
	if table != "Contact" {
		return 0, errors.New("unexpected table " + table)
	}
	return f.total, nil
}

func (f *fakeContacts) Query(_ context.Context, opts services.QueryOptions) ([]map[string]any, error) {
	f.mu.Lock()
	f.pages = append(f.pages, opts.Page)
	f.mu.Unlock()

	if f.failOn >= 0 && opts.Page == f.failOn {
		return nil, errors.New("page unavailable")
	}
	var records []map[string]any
	for id := opts.Page*opts.Limit + 1; id <= min(f.total, (opts.Page+1)*opts.Limit); id++ {
		records = append(records, map[string]any{"Id": id})
	}
	return records, nil
}

func TestExportMergesPagesInOrder(t *testing.T) {
	data := &fakeContacts{total: 25, failOn: -1}
	cmd := ExportCommand{PageSize: 10, Workers: 3, Fields: []string{"Id"}}
	cmd.SetCommon(CommonOpts{Logger: zaptest.NewLogger(t)})

	out := &bytes.Buffer{}
	require.NoError(t, cmd.export(context.Background(), data, out))

	var result struct {
		RunID    string           `json:"runId"`
		Count    int              `json:"count"`
		Contacts []map[string]int `json:"contacts"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &result))
	assert.NotEmpty(t, result.RunID)
	assert.Equal(t, 25, result.Count)
	require.Len(t, result.Contacts, 25)
	for i, c := range result.Contacts {
		assert.Equal(t, i+1, c["Id"])
	}
	assert.ElementsMatch(t, []int{0, 1, 2}, data.pages)
}

func TestExportEmptyTable(t *testing.T) {
	data := &fakeContacts{total: 0, failOn: -1}
	cmd := ExportCommand{PageSize: 10, Workers: 2}
	cmd.SetCommon(CommonOpts{Logger: zaptest.NewLogger(t)})

	out := &bytes.Buffer{}
	require.NoError(t, cmd.export(context.Background(), data, out))
	assert.Contains(t, out.String(), `"count": 0`)
	assert.Empty(t, data.pages)
}

func TestExportFailsOnPageError(t *testing.T) {
	data := &fakeContacts{total: 30, failOn: 1}
	cmd := ExportCommand{PageSize: 10, Workers: 2}
	cmd.SetCommon(CommonOpts{Logger: zaptest.NewLogger(t)})

	out := &bytes.Buffer{}
	err := cmd.export(context.Background(), data, out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "page 1")
	assert.Empty(t, out.String())
}

func TestExportClampsPageSize(t *testing.T) {
	data := &fakeContacts{total: 1500, failOn: -1}
	cmd := ExportCommand{PageSize: 5000, Workers: 0}
	cmd.SetCommon(CommonOpts{Logger: zaptest.NewLogger(t)})

	require.NoError(t, cmd.export(context.Background(), data, &bytes.Buffer{}))
	assert.Equal(t, []int{0, 1}, data.pages)
}
