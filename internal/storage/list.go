// Copyright (c) 2026 Spryker Scheduler Team
// cronicle-hook - scheduler bootstrap hook
// This source code is licensed under the MIT license found in the LICENSE file.

package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

const (
	typeList     = "list"
	typeListPage = "list_page"
)

// ListHeader is the record stored at a list's key.
type ListHeader struct {
	Type      string `json:"type"`
	Length    int    `json:"length"`
	PageSize  int    `json:"page_size"`
	FirstPage int    `json:"first_page"`
	LastPage  int    `json:"last_page"`
}

type listPage struct {
	Type  string `json:"type"`
	Items []Item `json:"items"`
}

func newPage() *listPage {
	return &listPage{Type: typeListPage, Items: []Item{}}
}

// ListInfo returns the header of the list at key.
func (s *Storage) ListInfo(ctx context.Context, key string) (*ListHeader, error) {
	return s.loadHeader(ctx, NormalizeKey(key))
}

// ListCreate creates an empty list at key.
func (s *Storage) ListCreate(ctx context.Context, key string) (*ListHeader, error) {
	key = NormalizeKey(key)
	unlock := s.locks.lock(key)
	defer unlock()

	if _, err := s.loadHeader(ctx, key); err == nil {
		return nil, fmt.Errorf("%s: %w", key, ErrListExists)
	} else if !errors.Is(err, ErrListNotFound) {
		return nil, err
	}
	return s.createList(ctx, key)
}

// ListGet returns length items starting at idx. A length of 0 returns every
// item from idx to the end; a negative idx counts back from the end.
func (s *Storage) ListGet(ctx context.Context, key string, idx, length int) ([]Item, error) {
	key = NormalizeKey(key)
	unlock := s.locks.lock(key)
	defer unlock()

	h, err := s.loadHeader(ctx, key)
	if err != nil {
		return nil, err
	}
	all, err := s.readAll(ctx, key, h)
	if err != nil {
		return nil, err
	}
	if idx < 0 {
		idx += len(all)
		if idx < 0 {
			idx = 0
		}
	}
	if idx >= len(all) {
		return []Item{}, nil
	}
	end := len(all)
	if length > 0 && idx+length < end {
		end = idx + length
	}
	return all[idx:end], nil
}

// ListPush appends items to the end of the list, creating it when missing.
func (s *Storage) ListPush(ctx context.Context, key string, items ...any) error {
	key = NormalizeKey(key)
	conv, err := toItems(items)
	if err != nil || len(conv) == 0 {
		return err
	}
	unlock := s.locks.lock(key)
	defer unlock()

	h, err := s.headerOrCreate(ctx, key)
	if err != nil {
		return err
	}
	page, err := s.loadPage(ctx, key, h.LastPage)
	if err != nil {
		return err
	}
	for _, it := range conv {
		if len(page.Items) >= h.PageSize {
			if err := s.savePage(ctx, key, h.LastPage, page); err != nil {
				return err
			}
			h.LastPage++
			page = newPage()
		}
		page.Items = append(page.Items, it)
		h.Length++
	}
	if err := s.savePage(ctx, key, h.LastPage, page); err != nil {
		return err
	}
	s.debugf("storage: list push %s (+%d, length %d)", key, len(conv), h.Length)
	return s.saveHeader(ctx, key, h)
}

// ListUnshift prepends items to the front of the list, keeping their order,
// and creates the list when missing.
func (s *Storage) ListUnshift(ctx context.Context, key string, items ...any) error {
	key = NormalizeKey(key)
	conv, err := toItems(items)
	if err != nil || len(conv) == 0 {
		return err
	}
	unlock := s.locks.lock(key)
	defer unlock()

	h, err := s.headerOrCreate(ctx, key)
	if err != nil {
		return err
	}
	page, err := s.loadPage(ctx, key, h.FirstPage)
	if err != nil {
		return err
	}
	for i := len(conv) - 1; i >= 0; i-- {
		if len(page.Items) >= h.PageSize {
			if err := s.savePage(ctx, key, h.FirstPage, page); err != nil {
				return err
			}
			h.FirstPage--
			page = newPage()
		}
		page.Items = append([]Item{conv[i]}, page.Items...)
		h.Length++
	}
	if err := s.savePage(ctx, key, h.FirstPage, page); err != nil {
		return err
	}
	s.debugf("storage: list unshift %s (+%d, length %d)", key, len(conv), h.Length)
	return s.saveHeader(ctx, key, h)
}

// ListFind returns the first item matching criteria and its index.
func (s *Storage) ListFind(ctx context.Context, key string, criteria map[string]any) (Item, int, error) {
	key = NormalizeKey(key)
	unlock := s.locks.lock(key)
	defer unlock()

	h, err := s.loadHeader(ctx, key)
	if err != nil {
		return nil, -1, err
	}
	idx := 0
	for p := h.FirstPage; p <= h.LastPage; p++ {
		page, err := s.loadPage(ctx, key, p)
		if err != nil {
			return nil, -1, err
		}
		for _, it := range page.Items {
			if it.Matches(criteria) {
				return it.Clone(), idx, nil
			}
			idx++
		}
	}
	return nil, -1, fmt.Errorf("%s: %w", key, ErrItemNotFound)
}

// ListFindUpdate merges updates into the first item matching criteria and
// returns the merged item. Fields of the stored item that updates does not
// mention are kept.
func (s *Storage) ListFindUpdate(ctx context.Context, key string, criteria map[string]any, updates any) (Item, error) {
	key = NormalizeKey(key)
	upd, err := ToItem(updates)
	if err != nil {
		return nil, fmt.Errorf("encode update for %s: %w", key, err)
	}
	unlock := s.locks.lock(key)
	defer unlock()

	h, err := s.loadHeader(ctx, key)
	if err != nil {
		return nil, err
	}
	for p := h.FirstPage; p <= h.LastPage; p++ {
		page, err := s.loadPage(ctx, key, p)
		if err != nil {
			return nil, err
		}
		for _, it := range page.Items {
			if !it.Matches(criteria) {
				continue
			}
			it.Merge(upd)
			if err := s.savePage(ctx, key, p, page); err != nil {
				return nil, err
			}
			s.debugf("storage: list find-update %s page %d", key, p)
			return it.Clone(), nil
		}
	}
	return nil, fmt.Errorf("%s: %w", key, ErrItemNotFound)
}

// ListDelete removes the list header and all of its pages.
func (s *Storage) ListDelete(ctx context.Context, key string) error {
	key = NormalizeKey(key)
	unlock := s.locks.lock(key)
	defer unlock()

	h, err := s.loadHeader(ctx, key)
	if err != nil {
		return err
	}
	for p := h.FirstPage; p <= h.LastPage; p++ {
		if err := s.engine.Delete(ctx, pageKey(key, p)); err != nil && !errors.Is(err, ErrNotFound) {
			return fmt.Errorf("delete %s page %d: %w", key, p, err)
		}
	}
	s.debugf("storage: list delete %s", key)
	if err := s.engine.Delete(ctx, key); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

func (s *Storage) createList(ctx context.Context, key string) (*ListHeader, error) {
	h := &ListHeader{Type: typeList, PageSize: s.pageSize}
	if err := s.savePage(ctx, key, 0, newPage()); err != nil {
		return nil, err
	}
	if err := s.saveHeader(ctx, key, h); err != nil {
		return nil, err
	}
	s.debugf("storage: list create %s (page size %d)", key, h.PageSize)
	return h, nil
}

func (s *Storage) headerOrCreate(ctx context.Context, key string) (*ListHeader, error) {
	h, err := s.loadHeader(ctx, key)
	if errors.Is(err, ErrListNotFound) {
		return s.createList(ctx, key)
	}
	return h, err
}

func (s *Storage) loadHeader(ctx context.Context, key string) (*ListHeader, error) {
	raw, err := s.engine.Get(ctx, key)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", key, ErrListNotFound)
		}
		return nil, fmt.Errorf("get list %s: %w", key, err)
	}
	var h ListHeader
	if err := decode(raw, &h); err != nil {
		return nil, fmt.Errorf("decode list %s: %w", key, err)
	}
	if h.Type != typeList {
		return nil, fmt.Errorf("record %s is not a list (type %q)", key, h.Type)
	}
	if h.PageSize <= 0 {
		h.PageSize = s.pageSize
	}
	return &h, nil
}

func (s *Storage) saveHeader(ctx context.Context, key string, h *ListHeader) error {
	raw, err := json.Marshal(h)
	if err != nil {
		return err
	}
	if err := s.engine.Put(ctx, key, raw); err != nil {
		return fmt.Errorf("put list %s: %w", key, err)
	}
	return nil
}

// loadPage treats a missing page as empty; the header is the source of truth
// for which pages exist.
func (s *Storage) loadPage(ctx context.Context, key string, n int) (*listPage, error) {
	pk := pageKey(key, n)
	raw, err := s.engine.Get(ctx, pk)
	if errors.Is(err, ErrNotFound) {
		s.debugf("storage: page %s missing, treating as empty", pk)
		return newPage(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("get page %s: %w", pk, err)
	}
	var page listPage
	if err := decode(raw, &page); err != nil {
		return nil, fmt.Errorf("decode page %s: %w", pk, err)
	}
	if page.Items == nil {
		page.Items = []Item{}
	}
	return &page, nil
}

func (s *Storage) savePage(ctx context.Context, key string, n int, page *listPage) error {
	page.Type = typeListPage
	raw, err := json.Marshal(page)
	if err != nil {
		return err
	}
	pk := pageKey(key, n)
	if err := s.engine.Put(ctx, pk, raw); err != nil {
		return fmt.Errorf("put page %s: %w", pk, err)
	}
	return nil
}

func (s *Storage) readAll(ctx context.Context, key string, h *ListHeader) ([]Item, error) {
	all := make([]Item, 0, h.Length)
	for p := h.FirstPage; p <= h.LastPage; p++ {
		page, err := s.loadPage(ctx, key, p)
		if err != nil {
			return nil, err
		}
		all = append(all, page.Items...)
	}
	return all, nil
}

func toItems(items []any) ([]Item, error) {
	out := make([]Item, 0, len(items))
	for _, v := range items {
		it, err := ToItem(v)
		if err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, nil
}
