package storage_test

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/meur/dtwiki/internal/errors"
	"github.com/meur/dtwiki/internal/models"
	"github.com/meur/dtwiki/internal/storage"
)

type StoreTestSuite struct {
	suite.Suite
	store *storage.Store
}

func (s *StoreTestSuite) SetupTest() {
	store, err := storage.New(filepath.Join(s.T().TempDir(), "test.db"))
	s.Require().NoError(err)
	s.store = store
}

func (s *StoreTestSuite) TearDownTest() {
	s.Require().NoError(s.store.Close())
}

func TestStoreTestSuite(t *testing.T) {
	suite.Run(t, new(StoreTestSuite))
}

func (s *StoreTestSuite) TestCharactersRoundTrip() {
	talent := &models.Skill{Name: "Bulwark", Description: "Gains a shield."}
	in := []models.Character{
		{Name: "Thane", CharacterClass: models.ClassGuardian, Quality: models.QualityMyth,
			Factions: []models.Faction{models.FactionSanctumGlory}, Talent: talent},
		{Name: "Lumi", CharacterClass: models.ClassPriest, Quality: models.QualityEpic},
	}
	s.Require().NoError(s.store.BulkUpsertCharacters(in))

	in[1].Quality = models.QualityLegend
	s.Require().NoError(s.store.BulkUpsertCharacters(in[1:]))

	out, err := s.store.GetCharacters()
	s.Require().NoError(err)
	s.Require().Len(out, 2)
	s.Equal("Lumi", out[0].Name)
	s.Equal(models.QualityLegend, out[0].Quality)
	s.Equal(in[0], out[1])

	err = s.store.BulkUpsertCharacters([]models.Character{{Name: " "}})
	s.True(errors.IsInvalidArgument(err))
}

func (s *StoreTestSuite) TestWyrmspells() {
	s.Require().NoError(s.store.BulkUpsertWyrmspells([]models.Wyrmspell{
		{Name: "Stormcall", Type: models.WyrmspellWildcry, Effect: "Lightning"},
		{Name: "Aegis", Type: models.WyrmspellRefuge},
	}))

	out, err := s.store.GetWyrmspells()
	s.Require().NoError(err)
	s.Equal([]models.Wyrmspell{
		{Name: "Aegis", Type: models.WyrmspellRefuge},
		{Name: "Stormcall", Type: models.WyrmspellWildcry, Effect: "Lightning"},
	}, out)
}

func (s *StoreTestSuite) TestPublishAndFetch() {
	body := json.RawMessage(`{"name":"Arena","members":[]}`)
	doc, err := s.store.CreateDocument(&models.DocumentCreate{
		Kind: models.KindTeam, Name: "Arena", Author: "meur", Body: body,
	})
	s.Require().NoError(err)
	s.Len(doc.ShareCode, 8)

	byID, err := s.store.GetDocument(doc.ID)
	s.Require().NoError(err)
	s.Equal("Arena", byID.Name)
	s.JSONEq(string(body), string(byID.Body))

	byCode, err := s.store.GetDocumentByShareCode(doc.ShareCode)
	s.Require().NoError(err)
	s.Equal(doc.ID, byCode.ID)

	_, err = s.store.GetDocument("missing")
	s.True(errors.IsNotFound(err))
	_, err = s.store.GetDocumentByShareCode("missing")
	s.True(errors.IsNotFound(err))
}

func (s *StoreTestSuite) TestCreateRejectsBadInput() {
	_, err := s.store.CreateDocument(&models.DocumentCreate{Kind: "deck", Body: json.RawMessage(`{}`)})
	s.True(errors.IsInvalidArgument(err))

	_, err = s.store.CreateDocument(&models.DocumentCreate{Kind: models.KindTeam, Body: json.RawMessage(`{`)})
	s.True(errors.IsInvalidArgument(err))
}

func (s *StoreTestSuite) TestListUpdateDelete() {
	team, err := s.store.CreateDocument(&models.DocumentCreate{Kind: models.KindTeam, Name: "T", Body: json.RawMessage(`{}`)})
	s.Require().NoError(err)
	_, err = s.store.CreateDocument(&models.DocumentCreate{Kind: models.KindTierList, Name: "L", Body: json.RawMessage(`{}`)})
	s.Require().NoError(err)

	all, err := s.store.ListDocuments("")
	s.Require().NoError(err)
	s.Len(all, 2)

	teams, err := s.store.ListDocuments(models.KindTeam)
	s.Require().NoError(err)
	s.Require().Len(teams, 1)
	s.Equal(team.ID, teams[0].ID)

	name := "Renamed"
	s.Require().NoError(s.store.UpdateDocument(team.ID, &models.DocumentUpdate{Name: &name, Body: json.RawMessage(`{"x":1}`)}))
	got, err := s.store.GetDocument(team.ID)
	s.Require().NoError(err)
	s.Equal("Renamed", got.Name)
	s.JSONEq(`{"x":1}`, string(got.Body))

	s.True(errors.IsNotFound(s.store.UpdateDocument("missing", &models.DocumentUpdate{Name: &name})))

	s.Require().NoError(s.store.DeleteDocument(team.ID))
	s.True(errors.IsNotFound(s.store.DeleteDocument(team.ID)))
}
