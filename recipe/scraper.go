// /home/krylon/go/src/github.com/blicero/skylight/recipe/scraper.go
// -*- mode: go; coding: utf-8; -*-
// Created on 18. 10. 2026 by Benjamin Walkenhorst
// (c) 2026 Benjamin Walkenhorst
// Time-stamp: <2026-10-19 12:58:40 krylon>

// Package recipe scrapes the recipe of the day from a cooking site.
package recipe

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"sync"
	"time"

	"github.com/blicero/skylight/common"
	"github.com/blicero/skylight/logdomain"
	"github.com/blicero/skylight/objects"
	"github.com/pquerna/ffjson/ffjson"
)

// Placeholders for values the site does not tell us.
const (
	DefaultTitle  = "Recipe of the Day"
	DefaultAuthor = "NYT Cooking"
)

const fetchTimeout = 10 * time.Second

// Scraper fetches the recipe of the day and remembers the last result.
type Scraper struct {
	log       *log.Logger
	client    *http.Client
	home      *url.URL
	userAgent string
	cachePath string
	lock      sync.RWMutex
	current   objects.Recipe
}

// New creates a Scraper for the site at home. If cachePath holds a
// previous result, it is loaded.
func New(home, userAgent, cachePath string) (*Scraper, error) {
	var (
		err error
		s   = &Scraper{
			client:    &http.Client{Timeout: fetchTimeout},
			userAgent: userAgent,
			cachePath: cachePath,
			current: objects.Recipe{
				Title:  DefaultTitle,
				Author: DefaultAuthor,
			},
		}
	)

	if s.log, err = common.GetLogger(logdomain.Recipe); err != nil {
		return nil, err
	} else if s.home, err = url.Parse(home); err != nil {
		return nil, fmt.Errorf("invalid recipe URL %q: %w", home, err)
	} else if s.home.Scheme == "" || s.home.Host == "" {
		return nil, fmt.Errorf("recipe URL %q is not absolute", home)
	}

	s.loadCache()
	return s, nil
} // func New(home, userAgent, cachePath string) (*Scraper, error)

func (s *Scraper) loadCache() {
	var (
		err error
		buf []byte
		rec objects.Recipe
	)

	if buf, err = os.ReadFile(s.cachePath); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			s.log.Printf("[ERROR] Cannot read recipe cache %s: %s\n",
				s.cachePath,
				err.Error())
		}
		return
	} else if err = ffjson.Unmarshal(buf, &rec); err != nil {
		s.log.Printf("[ERROR] Cannot parse recipe cache %s: %s\n",
			s.cachePath,
			err.Error())
		return
	}

	s.current = rec
	s.log.Printf("[DEBUG] Loaded cached recipe %q\n", rec.Title)
} // func (s *Scraper) loadCache()

func (s *Scraper) saveCache(rec *objects.Recipe) {
	var (
		err error
		buf []byte
	)

	if buf, err = ffjson.Marshal(rec); err != nil {
		s.log.Printf("[ERROR] Cannot serialize recipe: %s\n", err.Error())
		return
	}

	defer ffjson.Pool(buf)

	if err = os.WriteFile(s.cachePath, buf, 0644); err != nil {
		s.log.Printf("[ERROR] Cannot write recipe cache %s: %s\n",
			s.cachePath,
			err.Error())
	}
} // func (s *Scraper) saveCache(rec *objects.Recipe)

// Current returns the most recent recipe.
func (s *Scraper) Current() objects.Recipe {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.current
} // func (s *Scraper) Current() objects.Recipe

// fetch downloads and parses the page at addr.
func (s *Scraper) fetch(ctx context.Context, addr string) (*page, error) {
	var (
		err  error
		req  *http.Request
		res  *http.Response
		base *url.URL
	)

	if base, err = url.Parse(addr); err != nil {
		return nil, err
	} else if req, err = http.NewRequestWithContext(ctx, http.MethodGet, addr, nil); err != nil {
		return nil, err
	}

	req.Header.Set("User-Agent", s.userAgent)

	if res, err = s.client.Do(req); err != nil {
		return nil, err
	}

	defer res.Body.Close() // nolint: errcheck

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GET %s: %s", addr, res.Status)
	}

	return parsePage(res.Body, base)
} // func (s *Scraper) fetch(ctx context.Context, addr string) (*page, error)

// details extracts the recipe from its own page.
func (s *Scraper) details(ctx context.Context, link string) (*objects.Recipe, error) {
	var (
		err error
		p   *page
		rec = &objects.Recipe{
			Title:  DefaultTitle,
			URL:    link,
			Author: DefaultAuthor,
		}
	)

	if p, err = s.fetch(ctx, link); err != nil {
		return nil, err
	}

	for _, block := range p.ldJSON {
		var v any

		if err = ffjson.Unmarshal([]byte(block), &v); err != nil {
			s.log.Printf("[DEBUG] Skipping malformed JSON-LD on %s: %s\n",
				link,
				err.Error())
			continue
		}

		var r = findRecipe(v)
		if r == nil {
			continue
		}

		if name := text(r["name"], ""); name != "" {
			rec.Title = name
		}
		if author := text(r["author"], "name"); author != "" {
			rec.Author = author
		}

		rec.Image = text(r["image"], "url")
		rec.Time = humanDuration(text(r["totalTime"], ""))
		rec.Servings = text(r["recipeYield"], "")

		return rec, nil
	}

	if p.ogTitle != "" {
		rec.Title = p.ogTitle
	}
	rec.Image = p.ogImage

	return rec, nil
} // func (s *Scraper) details(ctx context.Context, link string) (*objects.Recipe, error)

// Refresh fetches the current recipe of the day. If there is no link to a
// recipe on the front page, the front page's OpenGraph title and image are
// used. On failure, the previous recipe is kept.
func (s *Scraper) Refresh(ctx context.Context) (objects.Recipe, error) {
	var (
		err  error
		home *page
		rec  *objects.Recipe
	)

	if home, err = s.fetch(ctx, s.home.String()); err != nil {
		s.log.Printf("[ERROR] Cannot fetch %s: %s\n",
			s.home,
			err.Error())
		return s.Current(), err
	}

	if len(home.links) > 0 {
		if rec, err = s.details(ctx, home.links[0]); err != nil {
			s.log.Printf("[ERROR] Cannot fetch recipe %s: %s\n",
				home.links[0],
				err.Error())
		}
	}

	if rec == nil {
		var prev = s.Current()
		rec = &prev

		if home.ogTitle != "" {
			rec.Title = home.ogTitle
		}
		if home.ogImage != "" {
			rec.Image = home.ogImage
		}
	}

	rec.Updated = time.Now().Unix()

	s.lock.Lock()
	s.current = *rec
	s.lock.Unlock()

	s.saveCache(rec)
	s.log.Printf("[INFO] Recipe updated: %s\n", rec.Title)

	return *rec, nil
} // func (s *Scraper) Refresh(ctx context.Context) (objects.Recipe, error)
