//go:build integration && unix

package integration

import (
	"context"
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/eliteGoblin/focusd/reclaim/internal/domain"
	"github.com/eliteGoblin/focusd/reclaim/internal/infra"
	"github.com/eliteGoblin/focusd/reclaim/internal/policy"
	"github.com/eliteGoblin/focusd/reclaim/internal/usecase"
	"github.com/eliteGoblin/focusd/reclaim/test/fixtures"
)

const mb = 1024 * 1024

const day = 24 * time.Hour

var _ = Describe("Reclaiming space in a fake home", func() {
	var (
		ctx     context.Context
		root    string
		home    *fixtures.FakeHome
		dataDir string
		logger  *zap.Logger
		audit   *infra.AuditLog

		cachePath    string
		moviePath    string
		oldTempPath  string
		newTempPath  string
		keptPath     string
		protectedDir string
	)

	newRules := func(extraCritical ...string) domain.Rules {
		return policy.ToRules(policy.NewLinuxPolicyWithEnv(home.Env()), extraCritical...)
	}

	scan := func(rules domain.Rules) *domain.Catalog {
		scanner := usecase.NewScanner(
			rules,
			usecase.NewPathClassifier(rules),
			usecase.NewSafetyAssessor(rules, infra.NewLiveProbe(), logger),
			nil,
			infra.NewFileSystemManagerWithHome(home.HomeDir),
			usecase.ScanOptions{},
			logger,
		)
		roots := []string{home.HomeDir, home.Path(".cache"), home.TempDir}
		catalog, err := scanner.Scan(ctx, roots, 1*mb)
		Expect(err).NotTo(HaveOccurred())
		return catalog
	}

	newManager := func(sessionID string) *usecase.SafeDeleteManager {
		backups := infra.NewSessionBackupStore(filepath.Join(dataDir, "backups"), time.Now(), logger)
		return usecase.NewSafeDeleteManager(
			infra.NewFileSystemManagerWithHome(home.HomeDir),
			infra.NewLiveProbe(),
			[]domain.DisposalStrategy{
				infra.NewPermanentStrategy(),
				infra.NewTrashStrategyFor("linux", home.HomeDir, logger),
			},
			backups,
			audit,
			logger,
		).WithSessionID(sessionID)
	}

	suggestion := func(sugs []domain.Suggestion, key string) *domain.Suggestion {
		for i := range sugs {
			if sugs[i].Key == key {
				return &sugs[i]
			}
		}
		return nil
	}

	BeforeEach(func() {
		var err error
		ctx = context.Background()
		logger = zap.NewNop()

		root, err = os.MkdirTemp("", "reclaim-integration-*")
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(os.RemoveAll, root)

		home, err = fixtures.NewFakeHome(root)
		Expect(err).NotTo(HaveOccurred())

		cachePath, err = home.WriteFile(home.Path(".cache/pip/http/abcd.whl"), 5*mb, day)
		Expect(err).NotTo(HaveOccurred())
		moviePath, err = home.WriteFile(home.Path("Downloads/movie.mkv"), 600*mb, 10*day)
		Expect(err).NotTo(HaveOccurred())
		oldTempPath, err = home.WriteFile(home.TempPath("build-1234.tmp"), 2*mb, 10*day)
		Expect(err).NotTo(HaveOccurred())
		newTempPath, err = home.WriteFile(home.TempPath("session.tmp"), 1*mb, time.Hour)
		Expect(err).NotTo(HaveOccurred())
		keptPath, err = home.WriteFile(home.Path("Documents/thesis.pdf"), 3*mb, 40*day)
		Expect(err).NotTo(HaveOccurred())
		protectedDir = home.Path("protected")
		_, err = home.WriteFile(filepath.Join(protectedDir, "ledger.bak"), 4*mb, 60*day)
		Expect(err).NotTo(HaveOccurred())
		_, err = home.WriteFile(home.Path("small.txt"), 1024, day)
		Expect(err).NotTo(HaveOccurred())

		dataDir = filepath.Join(root, "data")
		audit, err = infra.OpenAuditLog(dataDir, filepath.Join(dataDir, infra.AuditDBName))
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(audit.Close)
	})

	Describe("Scan", func() {
		It("records files above the threshold with category and safety", func() {
			catalog := scan(newRules())

			byPath := make(map[string]*domain.FileRecord)
			for _, r := range catalog.Records {
				byPath[r.Path] = r
			}
			Expect(byPath).To(HaveLen(6))
			Expect(byPath).NotTo(HaveKey(home.Path("small.txt")))

			Expect(byPath[cachePath].Category).To(Equal(domain.CategoryCache))
			Expect(byPath[cachePath].Safety).To(Equal(domain.SafetySafe))
			Expect(byPath[moviePath].Category).To(Equal(domain.CategoryDownloads))
			Expect(byPath[moviePath].Safety).To(Equal(domain.SafetyUser))
			Expect(byPath[oldTempPath].Category).To(Equal(domain.CategoryTemp))
			Expect(byPath[keptPath].Category).To(Equal(domain.CategoryDocuments))
		})

		It("marks files below an extra critical root as critical", func() {
			catalog := scan(newRules(protectedDir))

			for _, r := range catalog.Records {
				if filepath.Dir(r.Path) == protectedDir {
					Expect(r.Safety).To(Equal(domain.SafetyCritical))
				}
			}
		})
	})

	Describe("Suggestions", func() {
		It("groups the catalog and puts safe suggestions first", func() {
			sugs := usecase.NewSuggestionEngine(usecase.RealClock{}, usecase.AllSuggestions()).Suggest(scan(newRules()))

			cache := suggestion(sugs, "cache")
			Expect(cache).NotTo(BeNil())
			Expect(cache.Files).To(HaveLen(1))
			Expect(cache.Files[0].Path).To(Equal(cachePath))

			oldTemp := suggestion(sugs, "temp-old")
			Expect(oldTemp).NotTo(BeNil())
			Expect(oldTemp.Files[0].Path).To(Equal(oldTempPath))
			Expect(suggestion(sugs, "temp-recent")).To(BeNil(), "recent temp files under 100 MB are not surfaced")

			downloads := suggestion(sugs, "downloads-large")
			Expect(downloads).NotTo(BeNil())
			Expect(downloads.TotalSize).To(BeNumerically(">=", 600*mb))

			Expect(sugs[0].Safety).To(Equal(domain.SafetySafe))
			Expect(sugs[len(sugs)-1].Safety).NotTo(Equal(domain.SafetySafe))
		})
	})

	Describe("SafeDeleteManager", func() {
		Context("when moving the cache suggestion to the trash", func() {
			It("removes the file from its original location and audits it", func() {
				catalog := scan(newRules())
				sugs := usecase.NewSuggestionEngine(usecase.RealClock{}, usecase.AllSuggestions()).Suggest(catalog)
				cache := suggestion(sugs, "cache")
				Expect(cache).NotTo(BeNil())

				res := newManager(catalog.SessionID).DeleteAll(ctx, cache.Files, domain.DeleteOptions{Disposal: domain.DisposalTrash})

				Expect(res.Removed).To(Equal(1))
				Expect(res.FreedBytes).To(Equal(int64(5 * mb)))
				Expect(home.Exists(cachePath)).To(BeFalse())
				Expect(home.TrashFiles()).To(ContainElement("abcd.whl"))

				entries, err := audit.List(0)
				Expect(err).NotTo(HaveOccurred())
				Expect(entries).To(HaveLen(1))
				Expect(entries[0].SessionID).To(Equal(catalog.SessionID))
				Expect(entries[0].Path).To(Equal(cachePath))
				Expect(entries[0].Outcome).To(Equal(domain.OutcomeRemoved))
				Expect(entries[0].Disposal).To(Equal(domain.DisposalTrash))
			})
		})

		Context("when a file sits below a critical root", func() {
			It("blocks it without touching the file", func() {
				catalog := scan(newRules(protectedDir))

				res := newManager(catalog.SessionID).DeleteAll(ctx, catalog.Records, domain.DeleteOptions{
					DryRun:   false,
					Disposal: domain.DisposalPermanent,
				})

				Expect(res.Blocked).To(BeNumerically(">=", 1))
				Expect(home.Exists(filepath.Join(protectedDir, "ledger.bak"))).To(BeTrue())
				for _, o := range res.Outcomes {
					if filepath.Dir(o.Path) == protectedDir {
						Expect(o.Status).To(Equal(domain.OutcomeBlocked))
						Expect(o.Err).To(MatchError(domain.ErrBlocked))
					}
				}

				n, err := audit.Count()
				Expect(err).NotTo(HaveOccurred())
				Expect(n).To(Equal(len(res.Outcomes)))
			})
		})

		Context("in dry-run mode", func() {
			It("reports removals but leaves every file in place", func() {
				catalog := scan(newRules())

				res := newManager(catalog.SessionID).DeleteAll(ctx, catalog.Records, domain.DeleteOptions{
					DryRun:   true,
					Disposal: domain.DisposalPermanent,
				})

				Expect(res.Removed).To(Equal(len(catalog.Records)))
				Expect(res.FreedBytes).To(BeZero())
				for _, r := range catalog.Records {
					Expect(home.Exists(r.Path)).To(BeTrue(), r.Path)
				}

				entries, err := audit.List(0)
				Expect(err).NotTo(HaveOccurred())
				for _, e := range entries {
					Expect(e.DryRun).To(BeTrue())
				}
			})
		})

		Context("with backup before permanent deletion", func() {
			It("keeps a copy and deletes the original", func() {
				catalog := scan(newRules())
				var target *domain.FileRecord
				for _, r := range catalog.Records {
					if r.Path == oldTempPath {
						target = r
					}
				}
				Expect(target).NotTo(BeNil())

				out := newManager(catalog.SessionID).Delete(ctx, target, domain.DeleteOptions{
					Backup:   true,
					Disposal: domain.DisposalPermanent,
				})

				Expect(out.Status).To(Equal(domain.OutcomeRemoved))
				Expect(home.Exists(oldTempPath)).To(BeFalse())
				Expect(out.BackupPath).NotTo(BeEmpty())
				info, err := os.Stat(out.BackupPath)
				Expect(err).NotTo(HaveOccurred())
				Expect(info.Size()).To(Equal(int64(2 * mb)))
			})
		})

		Context("when the context is cancelled before the batch", func() {
			It("stops without removing anything", func() {
				catalog := scan(newRules())
				cancelled, cancel := context.WithCancel(ctx)
				cancel()

				res := newManager(catalog.SessionID).DeleteAll(cancelled, catalog.Records, domain.DeleteOptions{Disposal: domain.DisposalPermanent})

				Expect(res.Cancelled).To(BeTrue())
				Expect(res.Removed).To(BeZero())
				Expect(home.Exists(newTempPath)).To(BeTrue())
			})
		})
	})

	Describe("Sweep", func() {
		It("empties trashed directories and drops their metadata last", func() {
			trash := home.Path(".local/share/Trash")
			_, err := home.WriteFile(filepath.Join(trash, "files", "olddir", "sub", "a.bin"), 2*mb, day)
			Expect(err).NotTo(HaveOccurred())
			_, err = home.WriteFile(filepath.Join(trash, "info", "olddir.trashinfo"), 64, day)
			Expect(err).NotTo(HaveOccurred())

			rules := newRules()
			scanner := usecase.NewScanner(
				rules,
				usecase.NewPathClassifier(rules),
				usecase.NewSafetyAssessor(rules, infra.NewLiveProbe(), logger),
				nil,
				infra.NewFileSystemManagerWithHome(home.HomeDir),
				usecase.ScanOptions{IncludeHidden: true},
				logger,
			)
			catalog, err := scanner.Scan(ctx, []string{trash}, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(catalog.Records).To(HaveLen(2))

			res := newManager(catalog.SessionID).Sweep(ctx, catalog.Records, []string{trash},
				domain.DeleteOptions{Disposal: domain.DisposalPermanent})

			Expect(res.Removed).To(Equal(2))
			Expect(home.TrashFiles()).To(BeEmpty())
			Expect(home.Exists(filepath.Join(trash, "info", "olddir.trashinfo"))).To(BeFalse())
			Expect(home.Exists(filepath.Join(trash, "files"))).To(BeTrue())
		})
	})

	Describe("CatalogStore", func() {
		It("exports a scan and aggregates it by category", func() {
			catalog := scan(newRules())
			store, err := infra.NewCatalogStore(filepath.Join(dataDir, "catalog.duckdb"), logger)
			Expect(err).NotTo(HaveOccurred())
			DeferCleanup(store.Close)

			Expect(store.SaveCatalog(catalog)).To(Succeed())

			latest, err := store.LatestSession()
			Expect(err).NotTo(HaveOccurred())
			Expect(latest).To(Equal(catalog.SessionID))

			totals, err := store.Summary(latest)
			Expect(err).NotTo(HaveOccurred())
			Expect(totals).NotTo(BeEmpty())
			Expect(totals[0].Category).To(Equal(domain.CategoryDownloads))

			var files int
			var size int64
			for _, t := range totals {
				files += t.Files
				size += t.TotalSize
			}
			Expect(files).To(Equal(len(catalog.Records)))
			Expect(size).To(Equal(catalog.TotalSize()))
		})
	})
})
