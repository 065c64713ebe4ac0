package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"directory/internal/docstore"
	"directory/internal/models"
)

// ============================================================
// EntryRepository Tests
// ============================================================

var entryRowColumns = []string{
	"id", "entry", "description", "slp_address", "signature", "category", "balance", "merit", "created_at",
}

func testEntry(id, category string) *models.Entry {
	return &models.Entry{
		ID:          id,
		Entry:       "example.com",
		Description: "test site",
		SlpAddress:  "simpleledger:qpnty9t0w93fez04h7yzevujpv8pun204qqp0jfafg",
		Signature:   "IFytRg6KpvTHCzcW0ZwVhPqdKtRGpoRDcuEb958yIgJFUJlb1F5qPzt/JnlYE7r012BSFj+UT67DZVTU8oNB5vw=",
		Category:    category,
		Balance:     100,
		Merit:       12.5,
		CreatedAt:   time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

func addEntryRow(rows *sqlmock.Rows, e *models.Entry) *sqlmock.Rows {
	return rows.AddRow(e.ID, e.Entry, e.Description, e.SlpAddress, e.Signature, e.Category, e.Balance, e.Merit, e.CreatedAt)
}

func TestEntryRepositoryEnsureSchema(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock: %v", err)
	}
	defer db.Close()

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS entries`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	repo := NewEntryRepository(db)
	if err := repo.EnsureSchema(context.Background()); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestEntryRepositoryAppend(t *testing.T) {
	tests := []struct {
		name        string
		mockErr     error
		expectError error
	}{
		{name: "success"},
		{
			name:        "duplicate id",
			mockErr:     errors.New("pq: duplicate key value violates unique constraint \"entries_id_key\""),
			expectError: ErrEntryExists,
		},
		{
			name:        "database error passes through",
			mockErr:     errors.New("test error"),
			expectError: errors.New("test error"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			if err != nil {
				t.Fatalf("failed to create mock: %v", err)
			}
			defer db.Close()

			e := testEntry("bafkreia", "bch")
			exp := mock.ExpectExec(`INSERT INTO entries`).
				WithArgs(e.ID, e.Entry, e.Description, e.SlpAddress, e.Signature, e.Category, e.Balance, e.Merit, sqlmock.AnyArg())
			if tt.mockErr != nil {
				exp.WillReturnError(tt.mockErr)
			} else {
				exp.WillReturnResult(sqlmock.NewResult(1, 1))
			}

			repo := NewEntryRepository(db)
			err = repo.Append(context.Background(), e)

			if tt.expectError == nil {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
			} else if err == nil || err.Error() != tt.expectError.Error() {
				t.Errorf("expected error %v, got %v", tt.expectError, err)
			}

			if err := mock.ExpectationsWereMet(); err != nil {
				t.Errorf("unfulfilled expectations: %v", err)
			}
		})
	}
}

func TestEntryRepositoryListAll(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock: %v", err)
	}
	defer db.Close()

	first := testEntry("bafkreia", "bch")
	second := testEntry("bafkreib", "tools")

	rows := sqlmock.NewRows(entryRowColumns)
	addEntryRow(rows, first)
	addEntryRow(rows, second)
	mock.ExpectQuery(`SELECT .+ FROM entries ORDER BY seq`).
		WillReturnRows(rows)

	repo := NewEntryRepository(db)
	result, err := repo.ListAll(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(result))
	}
	if result[0].ID != first.ID || result[1].ID != second.ID {
		t.Errorf("order not preserved: %s, %s", result[0].ID, result[1].ID)
	}
	if result[1].Category != "tools" || result[0].Balance != 100 || result[0].Merit != 12.5 {
		t.Errorf("fields not scanned correctly: %+v", result[0])
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestEntryRepositoryListNormalizesCreatedAt(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock: %v", err)
	}
	defer db.Close()

	stored := testEntry("", "bch")
	stored.CreatedAt = time.Date(2024, 1, 2, 3, 4, 5, 123456000, time.UTC)
	id, err := docstore.ComputeID(stored)
	if err != nil {
		t.Fatalf("ComputeID failed: %v", err)
	}
	stored.ID = id

	// строка как из сессии с TimeZone=Europe/Moscow
	scanned := *stored
	scanned.CreatedAt = stored.CreatedAt.In(time.FixedZone("MSK", 3*3600))
	mock.ExpectQuery(`SELECT .+ FROM entries ORDER BY seq`).
		WillReturnRows(addEntryRow(sqlmock.NewRows(entryRowColumns), &scanned))

	result, err := NewEntryRepository(db).ListAll(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(result))
	}
	if result[0].CreatedAt.Location() != time.UTC {
		t.Errorf("expected UTC, got %v", result[0].CreatedAt.Location())
	}

	again, err := docstore.ComputeID(result[0])
	if err != nil {
		t.Fatalf("ComputeID failed: %v", err)
	}
	if again != id {
		t.Errorf("re-read entry does not reproduce its id: %s != %s", again, id)
	}
}

func TestEntryRepositoryListByPrefix(t *testing.T) {
	t.Run("empty prefix scans everything", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		if err != nil {
			t.Fatalf("failed to create mock: %v", err)
		}
		defer db.Close()

		mock.ExpectQuery(`SELECT .+ FROM entries ORDER BY seq`).
			WillReturnRows(sqlmock.NewRows(entryRowColumns))

		repo := NewEntryRepository(db)
		result, err := repo.ListByPrefix(context.Background(), "")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result == nil || len(result) != 0 {
			t.Errorf("expected empty non-nil slice, got %v", result)
		}

		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unfulfilled expectations: %v", err)
		}
	})

	t.Run("prefix filters by id", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		if err != nil {
			t.Fatalf("failed to create mock: %v", err)
		}
		defer db.Close()

		rows := sqlmock.NewRows(entryRowColumns)
		addEntryRow(rows, testEntry("bafkreia1", "bch"))
		mock.ExpectQuery(`SELECT .+ FROM entries WHERE left\(id, length\(\$1\)\) = \$1 ORDER BY seq`).
			WithArgs("bafkreia").
			WillReturnRows(rows)

		repo := NewEntryRepository(db)
		result, err := repo.ListByPrefix(context.Background(), "bafkreia")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(result) != 1 || result[0].ID != "bafkreia1" {
			t.Errorf("unexpected result: %v", result)
		}

		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unfulfilled expectations: %v", err)
		}
	})

	t.Run("query error", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		if err != nil {
			t.Fatalf("failed to create mock: %v", err)
		}
		defer db.Close()

		mock.ExpectQuery(`SELECT .+ FROM entries`).
			WillReturnError(errors.New("test error"))

		repo := NewEntryRepository(db)
		if _, err := repo.ListByPrefix(context.Background(), "x"); err == nil || err.Error() != "test error" {
			t.Errorf("expected 'test error', got %v", err)
		}
	})
}

func TestEntryRepositoryCount(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM entries`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(12))

	repo := NewEntryRepository(db)
	count, err := repo.Count(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 12 {
		t.Errorf("expected 12, got %d", count)
	}
}
