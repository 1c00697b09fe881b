package google

import (
	"context"
	"encoding/json"
	"fmt"
	"iter"
	"maps"
)

const (
	nextPageTokenKey = "nextPageToken"
	pageTokenParam   = "pageToken"
	pageSizeParam    = "pageSize"
)

// Requester is the part of Client a Paginator needs.
type Requester interface {
	Do(ctx context.Context, userID string, req Request, out any) error
}

// Result is the terminal state of a sweep. Completed is false both when a
// page failed (Err is set) and when the consumer stopped early.
type Result struct {
	Completed bool
	Err       error
}

// Paginator follows nextPageToken through a listing endpoint. GET
// listings carry the page token in the query string, POST searches in the
// JSON body; Client.Do takes care of the difference.
type Paginator[T any] struct {
	client    Requester
	userID    string
	req       Request
	itemsKey  string
	pageSize  int
	sizeParam string

	result Result
}

func NewPaginator[T any](client Requester, userID string, req Request, itemsKey string, pageSize int) *Paginator[T] {
	return &Paginator[T]{
		client:    client,
		userID:    userID,
		req:       req,
		itemsKey:  itemsKey,
		pageSize:  pageSize,
		sizeParam: pageSizeParam,
	}
}

// WithPageSizeParam renames the page size parameter for APIs that do not
// call it pageSize (Calendar uses maxResults).
func (p *Paginator[T]) WithPageSizeParam(name string) *Paginator[T] {
	p.sizeParam = name
	return p
}

// Items returns the concatenation of every page's items in page order.
// Each call starts a new sweep from the first page.
func (p *Paginator[T]) Items(ctx context.Context) iter.Seq[T] {
	return func(yield func(T) bool) {
		p.result = Result{}
		pageToken := ""

		for {
			page, err := p.fetch(ctx, pageToken)
			if err != nil {
				p.result.Err = err
				return
			}

			for _, item := range page.items {
				if !yield(item) {
					return
				}
			}

			if page.nextToken == "" {
				p.result.Completed = true
				return
			}
			pageToken = page.nextToken
		}
	}
}

// Result reports how the last sweep ended.
func (p *Paginator[T]) Result() Result {
	return p.result
}

// Err returns the error that ended the last sweep, if any.
func (p *Paginator[T]) Err() error {
	return p.result.Err
}

type page[T any] struct {
	items     []T
	nextToken string
}

func (p *Paginator[T]) fetch(ctx context.Context, pageToken string) (*page[T], error) {
	req := p.req
	req.Params = maps.Clone(p.req.Params)
	if req.Params == nil {
		req.Params = make(map[string]any)
	}
	if p.pageSize > 0 {
		req.Params[p.sizeParam] = p.pageSize
	}
	if pageToken != "" {
		req.Params[pageTokenParam] = pageToken
	}

	var raw map[string]json.RawMessage
	if err := p.client.Do(ctx, p.userID, req, &raw); err != nil {
		return nil, err
	}

	out := &page[T]{}
	if data, ok := raw[p.itemsKey]; ok {
		if err := json.Unmarshal(data, &out.items); err != nil {
			return nil, fmt.Errorf("failed to decode %s page: %w", p.itemsKey, err)
		}
	}
	if data, ok := raw[nextPageTokenKey]; ok {
		if err := json.Unmarshal(data, &out.nextToken); err != nil {
			return nil, fmt.Errorf("failed to decode page token: %w", err)
		}
	}
	return out, nil
}
