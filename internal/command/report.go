package command

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"
)

const insultFanout = 4

// LevelReporter builds the level check report for tracked characters.
type LevelReporter struct {
	store  Store
	armory Armory
	oracle Oracle
}

// NewLevelReporter creates a reporter. oracle may be nil, in which case
// reports never carry insults.
func NewLevelReporter(store Store, armory Armory, oracle Oracle) *LevelReporter {
	return &LevelReporter{store: store, armory: armory, oracle: oracle}
}

type levelEntry struct {
	name   string
	level  int
	desc   string
	insult string
}

// Report looks up every tracked character and renders them highest level
// first, followed by the lookups that failed. typing, if non-nil, is called
// once the slow part starts.
func (r *LevelReporter) Report(ctx context.Context, insults bool, typing func()) (string, error) {
	if r.armory == nil || !r.armory.Enabled() {
		return notConfiguredReply, nil
	}
	names, err := r.store.Characters(ctx)
	if err != nil {
		return "", fmt.Errorf("list characters: %w", err)
	}
	if len(names) == 0 {
		return noCharactersReply, nil
	}
	if typing != nil {
		typing()
	}

	realm := r.armory.RealmName()
	var entries []levelEntry
	var failures []string
	for _, res := range r.armory.Characters(ctx, names) {
		if res.Err != nil {
			failures = append(failures, fmt.Sprintf("%s: %s", res.Name, lookupError(res.Err, res.Name, realm)))
			continue
		}
		entries = append(entries, levelEntry{
			name:  res.Character.Name,
			level: res.Character.Level,
			desc:  res.Character.Description(),
		})
	}
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].level > entries[j].level })

	if insults && r.oracle != nil {
		r.addInsults(ctx, entries)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "**Level Check — %s**\n", realm)
	for _, e := range entries {
		if e.insult != "" {
			fmt.Fprintf(&sb, "  %s — Level %d %s — *%s*\n", e.name, e.level, e.desc, e.insult)
		} else {
			fmt.Fprintf(&sb, "  %s — Level %d %s\n", e.name, e.level, e.desc)
		}
	}
	for _, f := range failures {
		fmt.Fprintf(&sb, "  ⚠ %s\n", f)
	}
	return sb.String(), nil
}

// addInsults asks the model for one insult per entry in parallel. Entries
// whose request fails are left without one.
func (r *LevelReporter) addInsults(ctx context.Context, entries []levelEntry) {
	system, err := r.store.SystemPrompt(ctx)
	if err != nil {
		slog.Warn("Failed to load system prompt for insults", "err", err)
	}

	var g errgroup.Group
	g.SetLimit(insultFanout)
	for i := range entries {
		e := &entries[i]
		g.Go(func() error {
			prompt := fmt.Sprintf("Give a 1-5 word insult for a level %d %s named %s. Reply with ONLY the insult, nothing else.",
				e.level, e.desc, e.name)
			insult, err := r.oracle.OneShot(ctx, system, prompt)
			if err != nil {
				slog.Warn("Insult request failed", "name", e.name, "err", err)
				return nil
			}
			e.insult = strings.TrimSpace(insult)
			return nil
		})
	}
	g.Wait()
}
