// Package sync reconciles deck sources into their decks.
package sync

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/conorfennell/knolbox/internal/cardid"
	"github.com/conorfennell/knolbox/internal/domain"
	"github.com/conorfennell/knolbox/internal/gitsource"
	"github.com/conorfennell/knolbox/internal/parser"
	"github.com/conorfennell/knolbox/internal/storage"
)

// DefaultConcurrency is how many git sources are fetched at once.
const DefaultConcurrency = 4

// Options control where and how git sources are checked out.
type Options struct {
	ReposDir string
	// Progress receives git clone and pull progress. Nil discards it.
	Progress    io.Writer
	Concurrency int
}

func (o Options) progress() io.Writer {
	if o.Progress == nil {
		return io.Discard
	}
	return o.Progress
}

func (o Options) concurrency() int {
	if o.Concurrency < 1 {
		return DefaultConcurrency
	}
	return o.Concurrency
}

// Report summarises one reconciliation of a deck.
type Report struct {
	Deck        string
	Parsed      int
	Added       int
	Deactivated int
	Reactivated int
	Errors      int
}

// RunSync iterates over all sources and reconciles them into their decks.
func RunSync(ctx context.Context, db *storage.DB, log *slog.Logger, opts Options) ([]Report, error) {
	log = log.With("component", "sync")
	log.Info("starting sync for all sources")

	sources, err := db.GetAllSources(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get sources: %w", err)
	}
	if len(sources) == 0 {
		log.Info("no sources configured")
		return nil, nil
	}

	if err := os.MkdirAll(opts.ReposDir, os.ModePerm); err != nil {
		return nil, fmt.Errorf("failed to create repos directory %s: %w", opts.ReposDir, err)
	}

	checkouts := fetchGitSources(ctx, log, opts, sources)

	byDeck := make(map[string][]storage.Source)
	var deckOrder []string
	for _, s := range sources {
		if _, seen := byDeck[s.DeckID]; !seen {
			deckOrder = append(deckOrder, s.DeckID)
		}
		byDeck[s.DeckID] = append(byDeck[s.DeckID], s)
	}

	var reports []Report
	for _, deckID := range deckOrder {
		if err := ctx.Err(); err != nil {
			return reports, err
		}
		report, err := syncDeck(ctx, db, log, checkouts, deckID, byDeck[deckID])
		if err != nil {
			log.Error("failed to sync deck", "deck_id", deckID, "error", err)
			continue
		}
		reports = append(reports, report)
	}
	log.Info("sync complete", "decks", len(reports))
	return reports, nil
}

func syncDeck(ctx context.Context, db *storage.DB, log *slog.Logger, checkouts map[int64]checkout, deckID string, sources []storage.Source) (Report, error) {
	deck, err := db.LoadDeck(ctx, deckID)
	if err != nil {
		return Report{}, err
	}
	report := Report{Deck: deck.Name}

	found := make(map[string]parsedCard)
	var order []string
	complete := true
	var scanned []int64

	for _, source := range sources {
		log.Info("syncing source", "id", source.ID, "type", source.Type, "path", source.Path)

		root := source.Path
		if source.Type == storage.SourceGit {
			co := checkouts[source.ID]
			if co.err != nil {
				log.Error("failed to sync git repo", "url", source.Path, "error", co.err)
				complete = false
				continue
			}
			root = co.path
		}

		cards, errs, err := scanSource(root)
		if err != nil {
			log.Error("failed to walk source", "path", root, "error", err)
			complete = false
			continue
		}
		for _, e := range errs {
			log.Warn("failed to parse file", "error", e)
		}
		report.Errors += len(errs)
		report.Parsed += len(cards)

		for _, c := range cards {
			if _, dup := found[c.id]; dup {
				continue
			}
			found[c.id] = c
			order = append(order, c.id)
		}
		scanned = append(scanned, source.ID)
	}

	now := db.Now()
	for _, id := range order {
		c := found[id]
		existing := deck.CardByID(id)
		if existing == nil {
			deck.Cards = append(deck.Cards, &domain.Card{
				ID:        id,
				Front:     c.entry.Front,
				Back:      c.entry.Back,
				Tags:      domain.NormalizeTags(c.entry.Tags),
				Source:    c.file,
				IsActive:  true,
				CreatedAt: now,
			})
			report.Added++
			continue
		}
		existing.Tags = domain.NormalizeTags(c.entry.Tags)
		existing.Source = c.file
		if !existing.IsActive {
			existing.IsActive = true
			report.Reactivated++
		}
	}

	// A failed source may still hold cards, so only a full scan deactivates.
	if complete {
		for _, card := range deck.Cards {
			if _, ok := found[card.ID]; !ok && card.IsActive {
				card.IsActive = false
				report.Deactivated++
			}
		}
	} else {
		log.Warn("skipping deactivation after incomplete scan", "deck", deck.Name)
	}

	if err := db.SaveDeck(ctx, deck); err != nil {
		return report, err
	}
	for _, id := range scanned {
		if err := db.UpdateSourceLastScanned(ctx, id); err != nil {
			log.Warn("failed to update last scanned for source", "source_id", id, "error", err)
		}
	}

	log.Info("reconciliation complete",
		"deck", deck.Name,
		"parsed_cards", report.Parsed,
		"added", report.Added,
		"deactivated", report.Deactivated,
		"reactivated", report.Reactivated,
		"errors", report.Errors,
	)
	return report, nil
}

type checkout struct {
	path string
	err  error
}

// fetchGitSources clones or pulls every git source, a few at a time.
// A failed fetch is recorded for its source and does not stop the others.
func fetchGitSources(ctx context.Context, log *slog.Logger, opts Options, sources []storage.Source) map[int64]checkout {
	results := make([]checkout, len(sources))

	var g errgroup.Group
	g.SetLimit(opts.concurrency())
	for i, source := range sources {
		if source.Type != storage.SourceGit {
			continue
		}
		i, source := i, source
		g.Go(func() error {
			path, err := gitURLToLocalPath(opts.ReposDir, source.Path)
			if err == nil {
				err = gitsource.Sync(ctx, log, source.Path, path, opts.progress())
			}
			results[i] = checkout{path: path, err: err}
			return nil
		})
	}
	g.Wait()

	checkouts := make(map[int64]checkout)
	for i, source := range sources {
		if source.Type == storage.SourceGit {
			checkouts[source.ID] = results[i]
		}
	}
	return checkouts
}

type parsedCard struct {
	id    string
	file  string
	entry parser.Entry
}

// scanSource parses every markdown file below root. Per-file parse errors are
// collected; a walk error aborts the scan.
func scanSource(root string) ([]parsedCard, []error, error) {
	var cards []parsedCard
	var parseErrors []error

	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(strings.ToLower(d.Name()), ".md") {
			return nil
		}
		entries, parseErr := parser.ParseFile(path)
		if parseErr != nil {
			parseErrors = append(parseErrors, fmt.Errorf("parsing %s: %w", path, parseErr))
			return nil
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			rel = path
		}
		for _, e := range entries {
			cards = append(cards, parsedCard{
				id:    cardid.Hash(e.Front, e.Back),
				file:  fmt.Sprintf("%s:%d", filepath.ToSlash(rel), e.Line),
				entry: e,
			})
		}
		return nil
	})
	if walkErr != nil {
		return nil, nil, walkErr
	}
	return cards, parseErrors, nil
}

func gitURLToLocalPath(baseDir, repoURL string) (string, error) {
	parsedURL, err := url.Parse(repoURL)
	if err != nil || (parsedURL.Scheme != "https" && parsedURL.Scheme != "http") {
		if strings.Contains(repoURL, "@") {
			parts := strings.Split(repoURL, ":")
			if len(parts) == 2 {
				hostAndUser := strings.Split(parts[0], "@")
				if len(hostAndUser) == 2 {
					host := hostAndUser[1]
					repoPath := strings.TrimSuffix(parts[1], ".git")
					return filepath.Join(baseDir, host, repoPath), nil
				}
			}
		}
		return "", fmt.Errorf("could not parse git URL: %s", repoURL)
	}

	sanitizedPath := strings.TrimSuffix(parsedURL.Path, ".git")
	return filepath.Join(baseDir, parsedURL.Host, sanitizedPath), nil
}
