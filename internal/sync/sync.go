// Package sync rebuilds the known-card set from every registered source
// and reconciles it against the card store.
package sync

import (
	"context"
	"fmt"
	"io/fs"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/conorfennell/repeat/internal/card"
	"github.com/conorfennell/repeat/internal/domain"
	"github.com/conorfennell/repeat/internal/gitsource"
	"github.com/conorfennell/repeat/internal/storage"
)

// DetectKind classifies a source path as git or local.
func DetectKind(path string) string {
	if strings.HasSuffix(path, ".git") || strings.HasPrefix(path, "git@") ||
		strings.HasPrefix(path, "https://") || strings.HasPrefix(path, "http://") {
		return storage.SourceGit
	}
	return storage.SourceLocal
}

// Run walks every registered source, parses its cards, and registers any
// identities the store has not seen in one atomic batch. Existing rows are
// never touched and never deleted; rows for cards that no longer exist in
// the sources simply stop being known. The returned map is the known-card
// set used for drilling and statistics.
func Run(ctx context.Context, db *storage.DB, reposDir string) (domain.KnownCards, error) {
	sources, err := db.GetAllSources(ctx)
	if err != nil {
		return nil, err
	}
	if len(sources) == 0 {
		log.Info("no sources configured; add one with 'repeat sources add <path-or-url>'")
		return domain.KnownCards{}, nil
	}

	known := domain.KnownCards{}
	for _, source := range sources {
		path := source.Path
		if source.Kind == storage.SourceGit {
			localPath, err := gitURLToLocalPath(reposDir, source.Path)
			if err != nil {
				log.Error("skipping git source", "url", source.Path, "error", err)
				continue
			}
			if err := gitsource.Sync(source.Path, localPath); err != nil {
				log.Error("skipping git source", "url", source.Path, "error", err)
				continue
			}
			path = localPath
		}

		count, err := collectCards(path, known)
		if err != nil {
			log.Error("skipping source", "path", source.Path, "error", err)
			continue
		}
		log.Debug("scanned source", "path", source.Path, "cards", count)

		if err := db.UpdateSourceLastScanned(ctx, source.ID); err != nil {
			log.Warn("failed to update last scanned", "source_id", source.ID, "error", err)
		}
	}

	if err := register(ctx, db, known); err != nil {
		return nil, err
	}
	return known, nil
}

// Scan builds the known-card set from a single directory without touching
// the source registry, then registers new identities the same way Run does.
func Scan(ctx context.Context, db *storage.DB, dir string) (domain.KnownCards, error) {
	known := domain.KnownCards{}
	if _, err := collectCards(dir, known); err != nil {
		return nil, err
	}
	if err := register(ctx, db, known); err != nil {
		return nil, err
	}
	return known, nil
}

// register inserts the identities the store has never seen as one
// all-or-nothing batch.
func register(ctx context.Context, db *storage.DB, known domain.KnownCards) error {
	rows, err := db.ScanAll(ctx)
	if err != nil {
		return err
	}
	existing := make(map[string]struct{}, len(rows))
	for _, row := range rows {
		existing[row.CardHash] = struct{}{}
	}

	var missing []string
	for hash := range known {
		if _, ok := existing[hash]; !ok {
			missing = append(missing, hash)
		}
	}
	if len(missing) == 0 {
		return nil
	}

	if err := db.EnsureBatch(ctx, missing); err != nil {
		return err
	}
	log.Info("registered new cards", "count", len(missing))
	return nil
}

// collectCards walks root for markdown files and adds every parsed card to
// known, keyed by its identity hash. Unreadable files are logged and
// skipped; a duplicate hash across files keeps the first occurrence.
func collectCards(root string, known domain.KnownCards) (int, error) {
	count := 0
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !card.IsMarkdown(d.Name()) {
			return nil
		}
		cards, parseErr := card.ParseFile(path)
		if parseErr != nil {
			log.Warn("failed to parse file", "path", path, "error", parseErr)
			return nil
		}
		for _, c := range cards {
			if _, ok := known[c.Hash]; !ok {
				known[c.Hash] = c
			}
			count++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("error walking directory %s: %w", root, err)
	}
	return count, nil
}

// gitURLToLocalPath maps a git URL onto a stable clone directory under
// baseDir, e.g. git@github.com:user/repo.git -> baseDir/github.com/user/repo.
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
