package service_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	dbfs "github.com/skilltrade/server/db"
	dbpkg "github.com/skilltrade/server/internal/db"
	sqlite "github.com/skilltrade/server/internal/repository/sqlite"
	"github.com/skilltrade/server/internal/service"
	"github.com/skilltrade/server/pkg/models"
)

func setupService(t *testing.T) (*service.Service, *sqlite.Repo) {
	t.Helper()
	ctx := context.Background()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	d, err := dbpkg.New(ctx, dsn)
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	t.Cleanup(func() { d.Close() })

	if err := dbpkg.Migrate(ctx, d, dbfs.Migrations, dbfs.SeedFiles); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	return service.New(d, nil, 24*time.Hour), sqlite.New(d.GetConn(), nil)
}

func mustUser(t *testing.T, repo *sqlite.Repo, username string) int64 {
	t.Helper()
	id, err := repo.CreateUser(context.Background(), &models.User{
		Username: username, Email: username + "@example.com", PasswordHash: "h",
	})
	if err != nil {
		t.Fatalf("CreateUser(%s) error: %v", username, err)
	}
	return id
}

func mustAddSkill(t *testing.T, svc *service.Service, userID int64, name, typ string) {
	t.Helper()
	if _, err := svc.AddSkill(context.Background(), userID, name, typ); err != nil {
		t.Fatalf("AddSkill(%d, %s, %s) error: %v", userID, name, typ, err)
	}
}

// pairUp seeds two users with complementary skills and returns their ids plus
// the match id surfaced by discovery.
func pairUp(t *testing.T, svc *service.Service, repo *sqlite.Repo) (a, b, matchID int64) {
	t.Helper()
	a = mustUser(t, repo, "ana")
	b = mustUser(t, repo, "bruno")

	mustAddSkill(t, svc, a, "Spanish", "teach")
	mustAddSkill(t, svc, a, "Guitar", "learn")
	mustAddSkill(t, svc, b, "Guitar", "teach")
	mustAddSkill(t, svc, b, "Spanish", "learn")

	views, err := svc.DiscoverMatches(context.Background(), a)
	if err != nil {
		t.Fatalf("DiscoverMatches error: %v", err)
	}
	if len(views) != 1 {
		t.Fatalf("expected one match got %d", len(views))
	}
	return a, b, views[0].MatchID
}

func TestDiscoveryRequiresBothDirections(t *testing.T) {
	svc, repo := setupService(t)
	ctx := context.Background()

	a := mustUser(t, repo, "ana")
	b := mustUser(t, repo, "bruno")

	// a teaches what b wants, but b teaches nothing a wants
	mustAddSkill(t, svc, a, "Spanish", "teach")
	mustAddSkill(t, svc, a, "Guitar", "learn")
	mustAddSkill(t, svc, b, "Spanish", "learn")
	mustAddSkill(t, svc, b, "Cooking", "teach")

	views, err := svc.DiscoverMatches(ctx, a)
	if err != nil {
		t.Fatalf("DiscoverMatches error: %v", err)
	}
	if len(views) != 0 {
		t.Fatalf("one-directional overlap must not match, got %d", len(views))
	}

	// closing the loop makes the pair visible from both sides
	mustAddSkill(t, svc, b, "Guitar", "teach")
	views, err = svc.DiscoverMatches(ctx, a)
	if err != nil {
		t.Fatalf("DiscoverMatches error: %v", err)
	}
	if len(views) != 1 || views[0].Partner.UserID != b {
		t.Fatalf("expected bruno as partner got %#v", views)
	}

	fromB, err := svc.DiscoverMatches(ctx, b)
	if err != nil {
		t.Fatalf("DiscoverMatches error: %v", err)
	}
	if len(fromB) != 1 || fromB[0].MatchID != views[0].MatchID {
		t.Fatalf("both sides must see the same match row: %#v vs %#v", views, fromB)
	}
}

func TestDiscoveryIsIdempotent(t *testing.T) {
	svc, repo := setupService(t)
	ctx := context.Background()

	_, _, matchID := pairUp(t, svc, repo)

	again, err := svc.DiscoverMatches(ctx, mustUserID(t, repo, "ana"))
	if err != nil {
		t.Fatalf("DiscoverMatches error: %v", err)
	}
	if len(again) != 1 || again[0].MatchID != matchID {
		t.Fatalf("repeat discovery must reuse the match row: %#v", again)
	}
}

func mustUserID(t *testing.T, repo *sqlite.Repo, username string) int64 {
	t.Helper()
	u, err := repo.UserByEmail(context.Background(), username+"@example.com")
	if err != nil || u == nil {
		t.Fatalf("lookup %s: %v", username, err)
	}
	return u.ID
}

func TestDiscoveryEmptyLedgerSides(t *testing.T) {
	svc, repo := setupService(t)
	ctx := context.Background()

	a := mustUser(t, repo, "ana")
	mustAddSkill(t, svc, a, "Spanish", "teach")

	views, err := svc.DiscoverMatches(ctx, a)
	if err != nil {
		t.Fatalf("DiscoverMatches error: %v", err)
	}
	if views != nil {
		t.Fatalf("nothing to learn means no candidates, got %#v", views)
	}

	if _, err := svc.DiscoverMatches(ctx, 9999); !errors.Is(err, service.ErrNotFound) {
		t.Fatalf("unknown user should be ErrNotFound got %v", err)
	}
}

func TestTradeRequestLifecycle(t *testing.T) {
	svc, repo := setupService(t)
	ctx := context.Background()

	a, b, matchID := pairUp(t, svc, repo)

	// propose
	v, err := svc.RequestOrRespondTrade(ctx, a, matchID)
	if err != nil {
		t.Fatalf("propose error: %v", err)
	}
	if v.Status != models.MatchPendingTrade || v.InitiatorID == nil || *v.InitiatorID != a {
		t.Fatalf("propose result wrong: %#v", v)
	}

	// initiator calling again cancels
	v, err = svc.RequestOrRespondTrade(ctx, a, matchID)
	if err != nil {
		t.Fatalf("cancel error: %v", err)
	}
	if v.Status != models.MatchPending || v.InitiatorID != nil {
		t.Fatalf("cancel result wrong: %#v", v)
	}

	// propose again, counterpart accepts
	if _, err := svc.RequestOrRespondTrade(ctx, a, matchID); err != nil {
		t.Fatalf("re-propose error: %v", err)
	}
	v, err = svc.RequestOrRespondTrade(ctx, b, matchID)
	if err != nil {
		t.Fatalf("accept error: %v", err)
	}
	if v.Status != models.MatchInTrade {
		t.Fatalf("accept must enter in_trade got %s", v.Status)
	}

	tr, err := repo.TradeByMatchID(ctx, matchID)
	if err != nil || tr == nil {
		t.Fatalf("trade not created: %v", err)
	}
	if tr.User1Skill != "Spanish" || tr.User2Skill != "Guitar" {
		t.Fatalf("trade skills wrong: %q / %q", tr.User1Skill, tr.User2Skill)
	}

	// further start-trade calls are rejected in_trade
	if _, err := svc.RequestOrRespondTrade(ctx, a, matchID); !errors.Is(err, service.ErrInvalidState) {
		t.Fatalf("start-trade while in_trade should be ErrInvalidState got %v", err)
	}

	// outsiders are rejected before any state change
	outsider := mustUser(t, repo, "carla")
	if _, err := svc.RequestOrRespondTrade(ctx, outsider, matchID); !errors.Is(err, service.ErrUnauthorized) {
		t.Fatalf("outsider should be ErrUnauthorized got %v", err)
	}
	if _, err := svc.RequestOrRespondTrade(ctx, a, 9999); !errors.Is(err, service.ErrNotFound) {
		t.Fatalf("unknown match should be ErrNotFound got %v", err)
	}
}

func TestTradeRequestExpires(t *testing.T) {
	svc, repo := setupService(t)
	ctx := context.Background()

	a, b, matchID := pairUp(t, svc, repo)

	base := time.Now()
	svc.SetClock(func() time.Time { return base })

	if _, err := svc.RequestOrRespondTrade(ctx, a, matchID); err != nil {
		t.Fatalf("propose error: %v", err)
	}

	// 25h later the counterpart's accept lands on an expired request and
	// becomes a fresh proposal instead
	svc.SetClock(func() time.Time { return base.Add(25 * time.Hour) })
	v, err := svc.RequestOrRespondTrade(ctx, b, matchID)
	if err != nil {
		t.Fatalf("touch after expiry error: %v", err)
	}
	if v.Status != models.MatchPendingTrade || v.InitiatorID == nil || *v.InitiatorID != b {
		t.Fatalf("expired request must revert before evaluation: %#v", v)
	}

	if _, err := repo.TradeByMatchID(ctx, matchID); err != nil {
		t.Fatalf("TradeByMatchID error: %v", err)
	}
	tr, _ := repo.TradeByMatchID(ctx, matchID)
	if tr != nil {
		t.Fatalf("no trade may exist after an expired accept attempt")
	}
}

func startTrade(t *testing.T, svc *service.Service, a, b, matchID int64) {
	t.Helper()
	ctx := context.Background()
	if _, err := svc.RequestOrRespondTrade(ctx, a, matchID); err != nil {
		t.Fatalf("propose error: %v", err)
	}
	if _, err := svc.RequestOrRespondTrade(ctx, b, matchID); err != nil {
		t.Fatalf("accept error: %v", err)
	}
}

func markAllDone(t *testing.T, svc *service.Service, userID, matchID int64) {
	t.Helper()
	ctx := context.Background()
	for _, role := range []string{"user1", "user2"} {
		for _, kind := range []string{"teaching", "learning"} {
			if _, err := svc.UpdateTradeProgress(ctx, userID, matchID, role, kind, true); err != nil {
				t.Fatalf("UpdateTradeProgress(%s,%s) error: %v", role, kind, err)
			}
		}
	}
}

func TestUpdateTradeProgress(t *testing.T) {
	svc, repo := setupService(t)
	ctx := context.Background()

	a, b, matchID := pairUp(t, svc, repo)
	startTrade(t, svc, a, b, matchID)

	v, err := svc.UpdateTradeProgress(ctx, a, matchID, "user1", "teaching", true)
	if err != nil {
		t.Fatalf("UpdateTradeProgress error: %v", err)
	}
	if !v.User1TeachingDone || v.User1LearningDone || v.User2TeachingDone || v.User2LearningDone {
		t.Fatalf("only the addressed flag may change: %#v", v)
	}

	// flags are overwrites, not toggles
	v, err = svc.UpdateTradeProgress(ctx, a, matchID, "user1", "teaching", false)
	if err != nil {
		t.Fatalf("UpdateTradeProgress error: %v", err)
	}
	if v.User1TeachingDone {
		t.Fatalf("flag must clear on completed=false")
	}

	if _, err := svc.UpdateTradeProgress(ctx, a, matchID, "user3", "teaching", true); !errors.Is(err, service.ErrValidation) {
		t.Fatalf("bad role should be ErrValidation got %v", err)
	}
	if _, err := svc.UpdateTradeProgress(ctx, a, matchID, "user1", "mentoring", true); !errors.Is(err, service.ErrValidation) {
		t.Fatalf("bad kind should be ErrValidation got %v", err)
	}
}

func TestCompleteTradeGatesOnAllFlags(t *testing.T) {
	svc, repo := setupService(t)
	ctx := context.Background()

	a, b, matchID := pairUp(t, svc, repo)
	startTrade(t, svc, a, b, matchID)

	if _, err := svc.CompleteTrade(ctx, a, matchID); !errors.Is(err, service.ErrInvalidState) {
		t.Fatalf("completion with open flags should be ErrInvalidState got %v", err)
	}

	markAllDone(t, svc, a, matchID)

	v, err := svc.CompleteTrade(ctx, a, matchID)
	if err != nil {
		t.Fatalf("CompleteTrade error: %v", err)
	}
	if v.Status != models.TradeCompleted || v.MatchStatus != models.MatchCompleted || v.Completed == nil {
		t.Fatalf("completion result wrong: %#v", v)
	}

	if _, err := svc.CompleteTrade(ctx, a, matchID); !errors.Is(err, service.ErrInvalidState) {
		t.Fatalf("double completion should be ErrInvalidState got %v", err)
	}

	h, err := repo.TradeHistoryByTrade(ctx, v.TradeID)
	if err != nil || h == nil {
		t.Fatalf("trade history missing: %v", err)
	}
	if h.User1Skill != "Spanish" || h.User2Skill != "Guitar" {
		t.Fatalf("history skills wrong: %#v", h)
	}
}

func TestUnilateralCompletionAutoRates(t *testing.T) {
	svc, repo := setupService(t)
	ctx := context.Background()

	a, b, matchID := pairUp(t, svc, repo)
	startTrade(t, svc, a, b, matchID)
	markAllDone(t, svc, a, matchID)

	v, err := svc.CompleteTrade(ctx, a, matchID)
	if err != nil {
		t.Fatalf("CompleteTrade error: %v", err)
	}

	// the counterpart never rated, so a 5-star stand-in is written on their
	// behalf and the completer pays a token for it
	r, err := repo.RatingByTradeAndReviewer(ctx, v.TradeID, b)
	if err != nil || r == nil {
		t.Fatalf("auto rating missing: %v", err)
	}
	if r.Score != 5 || r.RatedUserID != a {
		t.Fatalf("auto rating wrong: %#v", r)
	}

	completer, _ := repo.UserByID(ctx, a)
	if completer.Rating != 5 {
		t.Fatalf("completer aggregate should be 5 got %v", completer.Rating)
	}
	if completer.TradeTokens != 0 {
		t.Fatalf("completer should have spent the initial token, has %d", completer.TradeTokens)
	}

	counterpart, _ := repo.UserByID(ctx, b)
	if counterpart.TradeTokens != 1 {
		t.Fatalf("counterpart tokens must be untouched, has %d", counterpart.TradeTokens)
	}
}

func TestMutualRatingEarnsTokens(t *testing.T) {
	svc, repo := setupService(t)
	ctx := context.Background()

	a, b, matchID := pairUp(t, svc, repo)
	startTrade(t, svc, a, b, matchID)
	markAllDone(t, svc, a, matchID)

	if _, err := svc.SubmitRating(ctx, a, matchID, 4, "great partner"); err != nil {
		t.Fatalf("SubmitRating error: %v", err)
	}
	if _, err := svc.SubmitRating(ctx, b, matchID, 5, "patient teacher"); err != nil {
		t.Fatalf("SubmitRating error: %v", err)
	}

	if _, err := svc.CompleteTrade(ctx, a, matchID); err != nil {
		t.Fatalf("CompleteTrade error: %v", err)
	}

	ua, _ := repo.UserByID(ctx, a)
	ub, _ := repo.UserByID(ctx, b)
	if ua.TradeTokens != 2 || ub.TradeTokens != 2 {
		t.Fatalf("mutual completion should credit both sides, got %d and %d", ua.TradeTokens, ub.TradeTokens)
	}
	if ua.Rating != 5 || ub.Rating != 4 {
		t.Fatalf("aggregates wrong: %v / %v", ua.Rating, ub.Rating)
	}
}

func TestSubmitRatingRules(t *testing.T) {
	svc, repo := setupService(t)
	ctx := context.Background()

	a, b, matchID := pairUp(t, svc, repo)
	startTrade(t, svc, a, b, matchID)

	if _, err := svc.SubmitRating(ctx, a, matchID, 6, ""); !errors.Is(err, service.ErrValidation) {
		t.Fatalf("score 6 should be ErrValidation got %v", err)
	}
	if _, err := svc.SubmitRating(ctx, a, matchID, 0, ""); !errors.Is(err, service.ErrValidation) {
		t.Fatalf("score 0 should be ErrValidation got %v", err)
	}

	// trade still has open flags
	if _, err := svc.SubmitRating(ctx, a, matchID, 4, ""); !errors.Is(err, service.ErrInvalidState) {
		t.Fatalf("rating before all flags should be ErrInvalidState got %v", err)
	}

	markAllDone(t, svc, a, matchID)

	rv, err := svc.SubmitRating(ctx, a, matchID, 4, "solid")
	if err != nil {
		t.Fatalf("SubmitRating error: %v", err)
	}
	if rv.RatedUserID != b || rv.RatedUser != 4 {
		t.Fatalf("rating view wrong: %#v", rv)
	}

	if _, err := svc.SubmitRating(ctx, a, matchID, 5, "changed my mind"); !errors.Is(err, service.ErrConflict) {
		t.Fatalf("second rating by same reviewer should be ErrConflict got %v", err)
	}
}

func TestRatingAggregateRoundsHalfUp(t *testing.T) {
	svc, repo := setupService(t)
	ctx := context.Background()

	// two trades against the same partner pool so b collects 4 and 3,
	// averaging 3.5 which rounds to 4
	a, b, match1 := pairUp(t, svc, repo)
	startTrade(t, svc, a, b, match1)
	markAllDone(t, svc, a, match1)
	if _, err := svc.SubmitRating(ctx, a, match1, 4, ""); err != nil {
		t.Fatalf("SubmitRating error: %v", err)
	}

	c := mustUser(t, repo, "carla")
	mustAddSkill(t, svc, c, "Spanish", "teach")
	mustAddSkill(t, svc, c, "Guitar", "learn")

	views, err := svc.DiscoverMatches(ctx, c)
	if err != nil {
		t.Fatalf("DiscoverMatches error: %v", err)
	}
	var match2 int64
	for _, v := range views {
		if v.Partner.UserID == b {
			match2 = v.MatchID
		}
	}
	if match2 == 0 {
		t.Fatalf("carla should match bruno: %#v", views)
	}

	startTrade(t, svc, c, b, match2)
	markAllDone(t, svc, c, match2)
	rv, err := svc.SubmitRating(ctx, c, match2, 3, "")
	if err != nil {
		t.Fatalf("SubmitRating error: %v", err)
	}
	if rv.RatedUser != 4 {
		t.Fatalf("3.5 must round up to 4 got %v", rv.RatedUser)
	}

	ub, _ := repo.UserByID(ctx, b)
	if ub.Rating != 4 {
		t.Fatalf("stored aggregate wrong: %v", ub.Rating)
	}
}

func TestReportIssueClosesTrade(t *testing.T) {
	svc, repo := setupService(t)
	ctx := context.Background()

	a, b, matchID := pairUp(t, svc, repo)
	startTrade(t, svc, a, b, matchID)

	rep, err := svc.ReportIssue(ctx, a, matchID, "no-show twice")
	if err != nil {
		t.Fatalf("ReportIssue error: %v", err)
	}
	if rep.ReportedUserID != b {
		t.Fatalf("report must target the counterpart: %#v", rep)
	}

	st, err := svc.GetTradeStatus(ctx, b, matchID)
	if err != nil {
		t.Fatalf("GetTradeStatus error: %v", err)
	}
	if st.Status != models.TradeReported || st.MatchStatus != models.MatchCompleted {
		t.Fatalf("report must close trade and match: %#v", st)
	}

	if _, err := svc.ReportIssue(ctx, b, matchID, "retaliation"); !errors.Is(err, service.ErrInvalidState) {
		t.Fatalf("second report should be ErrInvalidState got %v", err)
	}

	flags, err := svc.ReportsForUser(ctx, b)
	if err != nil || len(flags) != 1 {
		t.Fatalf("reported user should see the flag: %v %#v", err, flags)
	}
}

func TestReportedTradeCannotBeRated(t *testing.T) {
	svc, repo := setupService(t)
	ctx := context.Background()

	a, b, matchID := pairUp(t, svc, repo)
	startTrade(t, svc, a, b, matchID)

	if _, err := svc.ReportIssue(ctx, a, matchID, "no-show twice"); err != nil {
		t.Fatalf("ReportIssue error: %v", err)
	}

	// no step was ever confirmed, so the counterpart cannot push a score
	// into the reporter's aggregate
	if _, err := svc.SubmitRating(ctx, b, matchID, 1, "revenge"); !errors.Is(err, service.ErrInvalidState) {
		t.Fatalf("rating a reported trade with open flags should be ErrInvalidState got %v", err)
	}

	ua, err := repo.UserByID(ctx, a)
	if err != nil || ua == nil {
		t.Fatalf("UserByID error: %v", err)
	}
	if ua.Rating != 0 {
		t.Fatalf("aggregate must be untouched, got %v", ua.Rating)
	}
}

func TestConcurrentAcceptAndCancel(t *testing.T) {
	svc, repo := setupService(t)
	ctx := context.Background()

	a, b, matchID := pairUp(t, svc, repo)

	if _, err := svc.RequestOrRespondTrade(ctx, a, matchID); err != nil {
		t.Fatalf("propose error: %v", err)
	}

	// initiator cancels while the counterpart accepts; serialization must
	// order them so exactly one interpretation wins
	var wg sync.WaitGroup
	errs := make([]error, 2)
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, errs[0] = svc.RequestOrRespondTrade(ctx, a, matchID)
	}()
	go func() {
		defer wg.Done()
		_, errs[1] = svc.RequestOrRespondTrade(ctx, b, matchID)
	}()
	wg.Wait()

	for _, err := range errs {
		if err != nil && !errors.Is(err, service.ErrInvalidState) {
			t.Fatalf("unexpected transition error: %v", err)
		}
	}

	m, err := repo.MatchByID(ctx, matchID)
	if err != nil || m == nil {
		t.Fatalf("MatchByID error: %v", err)
	}
	tr, err := repo.TradeByMatchID(ctx, matchID)
	if err != nil {
		t.Fatalf("TradeByMatchID error: %v", err)
	}

	switch m.Status {
	case models.MatchInTrade:
		// accept ran first; the late cancel was rejected
		if tr == nil {
			t.Fatalf("in_trade without a trade row")
		}
		if !errors.Is(errs[0], service.ErrInvalidState) {
			t.Fatalf("cancel after accept should be ErrInvalidState got %v", errs[0])
		}
	case models.MatchPendingTrade:
		// cancel ran first; the counterpart's call became a fresh proposal
		if tr != nil {
			t.Fatalf("no trade may exist after a cancellation, got %#v", tr)
		}
		if m.InitiatorID == nil || *m.InitiatorID != b {
			t.Fatalf("expected the counterpart as new initiator: %#v", m)
		}
	default:
		t.Fatalf("inconsistent final status %q", m.Status)
	}
}

func TestAcceptWithEmptyTeachLedger(t *testing.T) {
	svc, repo := setupService(t)
	ctx := context.Background()

	a, b, matchID := pairUp(t, svc, repo)

	if _, err := svc.RequestOrRespondTrade(ctx, a, matchID); err != nil {
		t.Fatalf("propose error: %v", err)
	}

	// the acceptor dropped their only taught skill between match and accept
	guitar, err := repo.SkillByName(ctx, "Guitar")
	if err != nil || guitar == nil {
		t.Fatalf("SkillByName error: %v", err)
	}
	if err := svc.RemoveSkill(ctx, b, guitar.ID); err != nil {
		t.Fatalf("RemoveSkill error: %v", err)
	}

	v, err := svc.RequestOrRespondTrade(ctx, b, matchID)
	if err != nil {
		t.Fatalf("accept error: %v", err)
	}
	if v.Status != models.MatchInTrade {
		t.Fatalf("accept must enter in_trade got %s", v.Status)
	}

	tr, err := repo.TradeByMatchID(ctx, matchID)
	if err != nil || tr == nil {
		t.Fatalf("trade not created: %v", err)
	}
	if tr.User1Skill != "Spanish" || tr.User2Skill != "" {
		t.Fatalf("empty teach side must store an empty label: %q / %q", tr.User1Skill, tr.User2Skill)
	}
}

func TestDeleteMatchPolicies(t *testing.T) {
	svc, repo := setupService(t)
	ctx := context.Background()

	a, b, matchID := pairUp(t, svc, repo)

	outsider := mustUser(t, repo, "carla")
	if err := svc.DeleteMatch(ctx, outsider, matchID); !errors.Is(err, service.ErrUnauthorized) {
		t.Fatalf("outsider delete should be ErrUnauthorized got %v", err)
	}

	startTrade(t, svc, a, b, matchID)
	if err := svc.DeleteMatch(ctx, a, matchID); !errors.Is(err, service.ErrInvalidState) {
		t.Fatalf("delete while in_trade should be ErrInvalidState got %v", err)
	}

	// a fresh pending match deletes fine
	c := mustUser(t, repo, "diego")
	mustAddSkill(t, svc, c, "Spanish", "teach")
	mustAddSkill(t, svc, c, "Guitar", "learn")
	views, err := svc.DiscoverMatches(ctx, c)
	if err != nil || len(views) == 0 {
		t.Fatalf("DiscoverMatches error: %v %#v", err, views)
	}
	if err := svc.DeleteMatch(ctx, c, views[0].MatchID); err != nil {
		t.Fatalf("DeleteMatch error: %v", err)
	}
	if err := svc.DeleteMatch(ctx, c, views[0].MatchID); !errors.Is(err, service.ErrNotFound) {
		t.Fatalf("double delete should be ErrNotFound got %v", err)
	}
}

func TestSkillLedger(t *testing.T) {
	svc, repo := setupService(t)
	ctx := context.Background()

	a := mustUser(t, repo, "ana")

	sk, err := svc.AddSkill(ctx, a, "Spanish", "teach")
	if err != nil {
		t.Fatalf("AddSkill error: %v", err)
	}

	// same entry twice conflicts, same skill in the other direction is fine
	if _, err := svc.AddSkill(ctx, a, "spanish", "teach"); !errors.Is(err, service.ErrConflict) {
		t.Fatalf("duplicate ledger entry should be ErrConflict got %v", err)
	}
	if _, err := svc.AddSkill(ctx, a, "Spanish", "learn"); err != nil {
		t.Fatalf("opposite direction should be allowed: %v", err)
	}

	if _, err := svc.AddSkill(ctx, a, "  ", "teach"); !errors.Is(err, service.ErrValidation) {
		t.Fatalf("blank name should be ErrValidation got %v", err)
	}
	if _, err := svc.AddSkill(ctx, a, "Chess", "master"); !errors.Is(err, service.ErrValidation) {
		t.Fatalf("bad type should be ErrValidation got %v", err)
	}

	teaching, learning, err := svc.UserSkills(ctx, a)
	if err != nil {
		t.Fatalf("UserSkills error: %v", err)
	}
	if len(teaching) != 1 || len(learning) != 1 {
		t.Fatalf("ledger wrong: %#v / %#v", teaching, learning)
	}

	if err := svc.RemoveSkill(ctx, a, sk.ID); err != nil {
		t.Fatalf("RemoveSkill error: %v", err)
	}
	if err := svc.RemoveSkill(ctx, a, sk.ID); !errors.Is(err, service.ErrNotFound) {
		t.Fatalf("removing an absent entry should be ErrNotFound got %v", err)
	}
	if err := svc.RemoveSkill(ctx, a, 9999); !errors.Is(err, service.ErrNotFound) {
		t.Fatalf("removing an unknown skill id should be ErrNotFound got %v", err)
	}

	found, err := svc.SearchSkills(ctx, "span", 10)
	if err != nil || len(found) != 1 {
		t.Fatalf("SearchSkills error: %v %#v", err, found)
	}
}

func TestChatRequiresParticipant(t *testing.T) {
	svc, repo := setupService(t)
	ctx := context.Background()

	a, b, matchID := pairUp(t, svc, repo)

	if _, err := svc.PostMessage(ctx, a, matchID, "   "); !errors.Is(err, service.ErrValidation) {
		t.Fatalf("blank message should be ErrValidation got %v", err)
	}

	if _, err := svc.PostMessage(ctx, a, matchID, "hola"); err != nil {
		t.Fatalf("PostMessage error: %v", err)
	}
	if _, err := svc.PostMessage(ctx, b, matchID, "hi!"); err != nil {
		t.Fatalf("PostMessage error: %v", err)
	}

	outsider := mustUser(t, repo, "carla")
	if _, err := svc.PostMessage(ctx, outsider, matchID, "hey"); !errors.Is(err, service.ErrUnauthorized) {
		t.Fatalf("outsider post should be ErrUnauthorized got %v", err)
	}
	if _, err := svc.Messages(ctx, outsider, matchID); !errors.Is(err, service.ErrUnauthorized) {
		t.Fatalf("outsider read should be ErrUnauthorized got %v", err)
	}

	msgs, err := svc.Messages(ctx, a, matchID)
	if err != nil {
		t.Fatalf("Messages error: %v", err)
	}
	if len(msgs) != 2 || msgs[0].Message != "hola" || msgs[1].Message != "hi!" {
		t.Fatalf("messages out of order: %#v", msgs)
	}
}

func TestProfileDocumentValidation(t *testing.T) {
	svc, repo := setupService(t)
	ctx := context.Background()

	a := mustUser(t, repo, "ana")

	good := json.RawMessage(`{"full_name":"Ana Diaz","bio":"language nerd","availability":["weekend"]}`)
	if err := svc.UpdateProfile(ctx, a, good); err != nil {
		t.Fatalf("UpdateProfile error: %v", err)
	}

	bad := json.RawMessage(`{"full_name":"Ana","favorite_color":"teal"}`)
	if err := svc.UpdateProfile(ctx, a, bad); !errors.Is(err, service.ErrValidation) {
		t.Fatalf("unknown field should be ErrValidation got %v", err)
	}

	view, err := svc.GetUser(ctx, a)
	if err != nil {
		t.Fatalf("GetUser error: %v", err)
	}
	var doc map[string]any
	if err := json.Unmarshal(view.Profile, &doc); err != nil {
		t.Fatalf("stored profile not JSON: %v", err)
	}
	if doc["full_name"] != "Ana Diaz" {
		t.Fatalf("profile content wrong: %#v", doc)
	}
}

// TestFullSwapScenario walks one swap end to end: discovery, proposal,
// acceptance, progress, mutual ratings and completion.
func TestFullSwapScenario(t *testing.T) {
	svc, repo := setupService(t)
	ctx := context.Background()

	a, b, matchID := pairUp(t, svc, repo)

	if _, err := svc.RequestOrRespondTrade(ctx, a, matchID); err != nil {
		t.Fatalf("propose error: %v", err)
	}
	if _, err := svc.RequestOrRespondTrade(ctx, b, matchID); err != nil {
		t.Fatalf("accept error: %v", err)
	}

	if _, err := svc.PostMessage(ctx, a, matchID, "Tuesdays work for me"); err != nil {
		t.Fatalf("PostMessage error: %v", err)
	}

	markAllDone(t, svc, b, matchID)

	if _, err := svc.SubmitRating(ctx, a, matchID, 5, "aced it"); err != nil {
		t.Fatalf("SubmitRating error: %v", err)
	}
	if _, err := svc.SubmitRating(ctx, b, matchID, 5, "gracias"); err != nil {
		t.Fatalf("SubmitRating error: %v", err)
	}

	st, err := svc.CompleteTrade(ctx, b, matchID)
	if err != nil {
		t.Fatalf("CompleteTrade error: %v", err)
	}
	if st.Status != models.TradeCompleted || st.MatchStatus != models.MatchCompleted {
		t.Fatalf("final state wrong: %#v", st)
	}

	for _, id := range []int64{a, b} {
		u, err := repo.UserByID(ctx, id)
		if err != nil || u == nil {
			t.Fatalf("UserByID error: %v", err)
		}
		if u.Rating != 5 {
			t.Fatalf("user %d aggregate should be 5 got %v", id, u.Rating)
		}
		if u.TradeTokens != 2 {
			t.Fatalf("user %d should hold 2 tokens got %d", id, u.TradeTokens)
		}
	}

	active, err := svc.ListActiveMatches(ctx, a)
	if err != nil {
		t.Fatalf("ListActiveMatches error: %v", err)
	}
	if len(active) != 0 {
		t.Fatalf("completed match must leave the active list: %#v", active)
	}
}
