package repository

import (
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-playground/assert/v2"
	"github.com/msanchezgrice/futurenews-sub000/internal/model"
)

func replaceFixture() (model.Edition, []model.Story) {
	ed := model.Edition{
		Day:           "2026-08-31",
		Offset:        1,
		Version:       "0011223344556677",
		MarketSummary: "10-Year Treasury Yield at 4.38%",
		EconSummary:   "2s10s Treasury spread at -0.53pp",
	}
	stories := []model.Story{
		{
			ID: "2026-08-31-1-business-fed-rate-pause-what-changed", Day: "2026-08-31", Offset: 1,
			Section: model.SectionBusiness, Rank: 1, Angle: "what-changed", TopicSlug: "fed-rate-pause",
			Headline: "Fed signals rate pause", Dek: "Seed dek", Body: "Seed body",
			Evidence: model.EvidencePack{TopicBrief: "- brief", Horizon: model.HorizonNear, Citations: []string{"signal:1"}},
		},
	}
	return ed, stories
}

func TestEditionRepository_Replace(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error creating sqlmock: %v", err)
	}
	defer db.Close()

	repo := NewEditionRepository(db)
	ed, stories := replaceFixture()

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO edition").
		WithArgs(ed.Day, ed.Offset, ed.Version, model.EditionBuilding, ed.MarketSummary, ed.EconSummary).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))
	mock.ExpectExec("DELETE FROM story").
		WithArgs(ed.Day, ed.Offset).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("INSERT INTO story").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE edition SET status").
		WithArgs(model.EditionBuilt, ed.Day, ed.Offset).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	if err := repo.Replace(&ed, stories); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	assert.Equal(t, int64(7), ed.ID)
	assert.Equal(t, model.EditionBuilt, ed.Status)

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestEditionRepository_Replace_RollsBackOnStoryError(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error creating sqlmock: %v", err)
	}
	defer db.Close()

	repo := NewEditionRepository(db)
	ed, stories := replaceFixture()

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO edition").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))
	mock.ExpectExec("DELETE FROM story").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO story").
		WillReturnError(errors.New("constraint violation"))
	mock.ExpectRollback()

	if err := repo.Replace(&ed, stories); err == nil {
		t.Fatal("expected error, got nil")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestEditionRepository_Get_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error creating sqlmock: %v", err)
	}
	defer db.Close()

	repo := NewEditionRepository(db)

	mock.ExpectQuery("SELECT id, day, offset_days").
		WithArgs("2026-08-31", 1).
		WillReturnError(sql.ErrNoRows)

	ed, err := repo.Get("2026-08-31", 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ed != nil {
		t.Errorf("expected nil edition, got %+v", ed)
	}
}

func TestEditionRepository_GetRenderCache_Miss(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error creating sqlmock: %v", err)
	}
	defer db.Close()

	repo := NewEditionRepository(db)

	mock.ExpectQuery("SELECT cache_key, payload FROM render_cache").
		WithArgs("story-1", "web").
		WillReturnError(sql.ErrNoRows)

	key, payload, err := repo.GetRenderCache("story-1", "web")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assert.Equal(t, "", key)
	assert.Equal(t, "", payload)
}
