package dcs_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/Laisky/errors/v2"
	"github.com/stretchr/testify/require"

	"github.com/gopak/dcs-cli/internal/dcs"
	"github.com/gopak/dcs-cli/internal/dcs/dcstest"
)

func TestFetchPage(t *testing.T) {
	srv := dcstest.NewServer()
	defer srv.Close()

	srv.SetPage(0,
		dcs.Chunk{Package: "a", Path: "a_1.0/x.c", Line: 1, Context: "x &lt; y"},
		dcs.Chunk{Package: "b", Path: "b_2.0/y.c", Line: 9},
	)
	srv.SetPageStatus(1, http.StatusBadGateway)
	srv.SetPageStatus(2, http.StatusInternalServerError)

	c := srv.Client()
	ctx := context.Background()

	page, err := c.FetchPage(ctx, "q-1", 0)
	require.NoError(t, err)
	require.Len(t, page, 2)
	require.Equal(t, "a_1.0/x.c", page[0].Path)
	require.Equal(t, "x < y", page[0].Context)
	require.Equal(t, 9, page[1].Line)

	_, err = c.FetchPage(ctx, "q-1", 1)
	require.ErrorIs(t, err, dcs.ErrNoMorePages)

	_, err = c.FetchPage(ctx, "q-1", 2)
	var fe *dcs.FetchError
	require.True(t, errors.As(err, &fe))
	require.Equal(t, http.StatusInternalServerError, fe.StatusCode)
	require.Equal(t, "Internal Server Error", fe.Reason)

	_, err = c.FetchPage(ctx, "q-1", 3)
	require.ErrorIs(t, err, dcs.ErrNoMorePages)

	hits := srv.Hits()
	require.Len(t, hits, 4)
	for i, h := range hits {
		require.Equal(t, "q-1", h.QueryID)
		require.Equal(t, i, h.Page)
	}
}

func TestFetchPage_EmptyPage(t *testing.T) {
	srv := dcstest.NewServer()
	defer srv.Close()
	srv.SetPage(0)

	page, err := srv.Client().FetchPage(context.Background(), "q", 0)
	require.NoError(t, err)
	require.Empty(t, page)
}

func TestPageURL(t *testing.T) {
	c := dcs.NewClient(dcs.WithResultsURL("https://example.org/results/"))
	require.Equal(t, "https://example.org/results/a%2Fb/page_3.json", c.PageURL("a/b", 3))

	c = dcs.NewClient()
	require.Equal(t, "https://codesearch.debian.net/results/abc/page_0.json", c.PageURL("abc", 0))
}
