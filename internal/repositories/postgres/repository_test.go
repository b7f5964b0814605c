package postgres

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/SAP-F-2025/form-service/internal/cache"
	"github.com/SAP-F-2025/form-service/internal/models"
	"github.com/SAP-F-2025/form-service/internal/repositories"
)

// newDryRunDB builds statements without a server; nothing is executed
func newDryRunDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(postgres.Open("host=localhost user=form dbname=form sslmode=disable"), &gorm.Config{
		DryRun:               true,
		DisableAutomaticPing: true,
	})
	if err != nil {
		t.Fatalf("open dry-run db: %v", err)
	}
	return db
}

func newTestCache(t *testing.T) (*miniredis.Miniredis, *cache.CacheManager) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, cache.NewCacheManager(client)
}

type queuedHooks struct {
	fns []func()
}

func (q *queuedHooks) hook() commitHook {
	return func(fn func()) { q.fns = append(q.fns, fn) }
}

func (q *queuedHooks) run() {
	for _, fn := range q.fns {
		fn()
	}
}

func TestFormPostgreSQL_DeleteInvalidatesAgainAfterCommit(t *testing.T) {
	mr, cm := newTestCache(t)
	ctx := context.Background()
	var queued queuedHooks
	forms := newFormPostgreSQL(newDryRunDB(t), cm, 0, queued.hook())

	_ = cm.Form.Set(ctx, "id:5", models.Form{ID: 5, Title: "Old"}, time.Minute)

	if err := forms.Delete(ctx, nil, 5); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if mr.Exists("form:id:5") {
		t.Errorf("cached form should be dropped immediately")
	}
	if len(queued.fns) != 1 {
		t.Fatalf("queued invalidations = %d, want 1", len(queued.fns))
	}

	// A reader between the first invalidation and the commit re-caches the old row
	_ = cm.Form.Set(ctx, "id:5", models.Form{ID: 5, Title: "Old"}, time.Minute)
	queued.run()
	if mr.Exists("form:id:5") {
		t.Errorf("cached form should be dropped after commit")
	}
}

func TestFormPostgreSQL_InvalidatesOutsideTransaction(t *testing.T) {
	mr, cm := newTestCache(t)
	ctx := context.Background()
	forms := newFormPostgreSQL(newDryRunDB(t), cm, 0, nil)

	_ = cm.Form.Set(ctx, "id:9", models.Form{ID: 9}, time.Minute)
	if err := forms.UpdatePublished(ctx, nil, 9, true); err != nil {
		t.Fatalf("UpdatePublished: %v", err)
	}
	if mr.Exists("form:id:9") {
		t.Errorf("cached form should be dropped")
	}
	if forms.cacheTTL != cache.FormCacheConfig.TTL {
		t.Errorf("cacheTTL = %v, want default %v", forms.cacheTTL, cache.FormCacheConfig.TTL)
	}
}

func TestSubmissionPostgreSQL_DeleteByFormInvalidatesAgainAfterCommit(t *testing.T) {
	mr, cm := newTestCache(t)
	ctx := context.Background()
	var queued queuedHooks
	submissions := newSubmissionPostgreSQL(newDryRunDB(t), cm, queued.hook())

	_ = cm.Stats.Set(ctx, "form:3:summary", repositories.SubmissionSummary{FormID: 3}, time.Minute)
	_ = cm.Stats.Set(ctx, "form:4:summary", repositories.SubmissionSummary{FormID: 4}, time.Minute)

	if _, err := submissions.DeleteByForm(ctx, nil, 3); err != nil {
		t.Fatalf("DeleteByForm: %v", err)
	}
	if len(queued.fns) != 1 {
		t.Fatalf("queued invalidations = %d, want 1", len(queued.fns))
	}

	_ = cm.Stats.Set(ctx, "form:3:summary", repositories.SubmissionSummary{FormID: 3}, time.Minute)
	queued.run()
	if mr.Exists("stats:form:3:summary") {
		t.Errorf("stats of form 3 should be dropped after commit")
	}
	if !mr.Exists("stats:form:4:summary") {
		t.Errorf("stats of form 4 should be kept")
	}
}

func TestQueryShapes(t *testing.T) {
	db := newDryRunDB(t)
	helpers := NewSharedHelpers(db)
	owner := "owner-1"
	published := true

	tests := []struct {
		name    string
		query   func(tx *gorm.DB) *gorm.DB
		want    []string
		notWant []string
	}{
		{
			name: "submission summary",
			query: func(tx *gorm.DB) *gorm.DB {
				return summaryQuery(tx, 7).Find(&[]map[string]interface{}{})
			},
			want: []string{
				"COUNT(*) as total",
				"COUNT(*) FILTER (WHERE is_guest) as guest",
				"MIN(created_at) as first, MAX(created_at) as last",
				`FROM "form_submissions"`,
				"form_id = 7",
			},
		},
		{
			name: "owner submissions",
			query: func(tx *gorm.DB) *gorm.DB {
				return ownerSubmissions(tx, owner).Find(&[]models.Submission{})
			},
			want: []string{
				"JOIN forms ON forms.id = form_submissions.form_id",
				"forms.owner_id = 'owner-1'",
			},
		},
		{
			name: "form filters and paging",
			query: func(tx *gorm.DB) *gorm.DB {
				q := helpers.ApplyFormFilters(tx.Model(&models.Form{}), repositories.FormFilters{
					OwnerID:     &owner,
					IsPublished: &published,
					Search:      "fest",
				})
				return helpers.ApplyPaginationAndSort(q, "title", "asc", 10, 5).Find(&[]models.Form{})
			},
			want: []string{
				"owner_id = 'owner-1'",
				"is_published = true",
				"title ILIKE '%fest%' OR description ILIKE '%fest%'",
				"ORDER BY title ASC,id ASC",
				"LIMIT 10",
				"OFFSET 5",
			},
		},
		{
			name: "unknown sort column",
			query: func(tx *gorm.DB) *gorm.DB {
				q := tx.Model(&models.Form{})
				return helpers.ApplyPaginationAndSort(q, "title; DROP TABLE forms", "", 0, 0).Find(&[]models.Form{})
			},
			want:    []string{"ORDER BY created_at DESC,id DESC"},
			notWant: []string{"DROP", "LIMIT"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql := db.ToSQL(tt.query)
			for _, fragment := range tt.want {
				if !strings.Contains(sql, fragment) {
					t.Errorf("missing %q in\n%s", fragment, sql)
				}
			}
			for _, fragment := range tt.notWant {
				if strings.Contains(sql, fragment) {
					t.Errorf("unexpected %q in\n%s", fragment, sql)
				}
			}
		})
	}
}
