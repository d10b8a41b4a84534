package retention

import (
	"sort"
	"time"

	"github.com/rs/zerolog"

	"westport-blog/internal/domain"
	"westport-blog/internal/infra/metrics"
)

// Rebuilder пересобирает листинг после удалений.
type Rebuilder interface {
	Rebuild() (domain.Listing, error)
}

// Policy пороги очистки.
type Policy struct {
	MaxAgeDays  int
	KeepMinimum int
	DryRun      bool
}

// Result итог очистки. В режиме DryRun Removed содержит намеченные к удалению файлы.
type Result struct {
	Removed []string
	Failed  []string
	Kept    int
}

// Manager удаляет старые страницы с учётом нижней границы количества.
type Manager struct {
	repo      domain.ArtifactRepo
	rebuilder Rebuilder
	loc       *time.Location
	now       func() time.Time
	log       zerolog.Logger
}

func NewManager(repo domain.ArtifactRepo, rebuilder Rebuilder, loc *time.Location, logger zerolog.Logger) *Manager {
	if loc == nil {
		loc = time.UTC
	}
	return &Manager{repo: repo, rebuilder: rebuilder, loc: loc, now: time.Now, log: logger}
}

// Candidates выбирает файлы к удалению. Файлы без даты в имени никогда не
// удаляются; keepMinimum самых новых защищены до проверки возраста.
func Candidates(files []domain.ArtifactFile, today time.Time, maxAgeDays, keepMinimum int) []domain.ArtifactFile {
	sorted := make([]domain.ArtifactFile, len(files))
	copy(sorted, files)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.Dated != b.Dated {
			return a.Dated
		}
		return a.Dated && a.Date.After(b.Date)
	})

	if keepMinimum < 0 {
		keepMinimum = 0
	}
	if keepMinimum >= len(sorted) {
		return nil
	}
	y, m, d := today.Date()
	cutoff := time.Date(y, m, d, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -maxAgeDays)

	var out []domain.ArtifactFile
	for _, f := range sorted[keepMinimum:] {
		if !f.Dated {
			continue
		}
		if f.Date.Before(cutoff) {
			out = append(out, f)
		}
	}
	return out
}

// Cleanup удаляет устаревшие страницы. Ошибка удаления отдельного файла
// логируется и не прерывает обработку остальных.
func (m *Manager) Cleanup(policy Policy) (Result, error) {
	files, err := m.repo.List()
	if err != nil {
		return Result{}, err
	}
	today := m.now().In(m.loc)
	candidates := Candidates(files, today, policy.MaxAgeDays, policy.KeepMinimum)

	res := Result{Kept: len(files) - len(candidates)}
	for _, f := range candidates {
		if policy.DryRun {
			m.log.Info().Str("file", f.Name).Msg("retention: DRY_RUN, файл был бы удалён")
			res.Removed = append(res.Removed, f.Name)
			continue
		}
		if err := m.repo.Remove(f.Name); err != nil {
			m.log.Error().Err(err).Str("file", f.Name).Msg("retention: не удалось удалить файл")
			metrics.RetentionErrors.Inc()
			res.Failed = append(res.Failed, f.Name)
			res.Kept++
			continue
		}
		metrics.RetentionDeleted.Inc()
		m.log.Info().Str("file", f.Name).Msg("retention: файл удалён")
		res.Removed = append(res.Removed, f.Name)
	}

	if policy.DryRun || len(res.Removed) == 0 {
		m.log.Info().Int("candidates", len(candidates)).Bool("dry_run", policy.DryRun).Msg("retention: листинг не меняется")
		return res, nil
	}
	if _, err := m.rebuilder.Rebuild(); err != nil {
		return res, err
	}
	return res, nil
}
