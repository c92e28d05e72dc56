package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"

	"gitlab.com/fleetops/whitelistd/internal/config"
	"gitlab.com/fleetops/whitelistd/internal/source/inventory/api"
	"gitlab.com/fleetops/whitelistd/internal/source/mock"
	"gitlab.com/fleetops/whitelistd/whitelist"
)

type memberReply struct {
	Whitelist string `json:"whitelist"`
	Host      string `json:"host"`
	Member    bool   `json:"member"`
	MatchedBy string `json:"matched_by"`
}

func newTestHandlers(src *mock.MockSource) *Handlers {
	cfg := &config.Config{
		Store: config.Store{
			DefaultBag:       "whitelist",
			DefaultAttribute: "patterns",
		},
	}

	return New(cfg, src)
}

func getMember(t *testing.T, h *Handlers, target string) (int, memberReply) {
	t.Helper()

	ww := httptest.NewRecorder()
	rr := httptest.NewRequest(http.MethodGet, target, nil)

	h.Router().ServeHTTP(ww, rr)

	res := ww.Result()
	defer res.Body.Close()

	var reply memberReply
	if res.StatusCode == http.StatusOK {
		require.NoError(t, json.NewDecoder(res.Body).Decode(&reply))
	}

	return res.StatusCode, reply
}

func TestMemberByPattern(t *testing.T) {
	mockCtrl := gomock.NewController(t)

	mockSource := mock.NewMockSource(mockCtrl)
	mockSource.EXPECT().
		GetWhitelist(gomock.Any(), "whitelist", "web", "patterns").
		Return(&whitelist.Record{Patterns: []string{"web-*.example.com"}, Roles: []string{"web"}}, nil).
		Times(1)

	status, reply := getMember(t, newTestHandlers(mockSource), "/v1/whitelists/web/member?host=web-1.example.com")

	require.Equal(t, http.StatusOK, status)
	require.Equal(t, memberReply{
		Whitelist: "web",
		Host:      "web-1.example.com",
		Member:    true,
		MatchedBy: "pattern",
	}, reply)
}

func TestMemberByRole(t *testing.T) {
	mockCtrl := gomock.NewController(t)

	mockSource := mock.NewMockSource(mockCtrl)
	mockSource.EXPECT().
		GetWhitelist(gomock.Any(), "whitelist", "backups", "patterns").
		Return(&whitelist.Record{Patterns: []string{"web-*.example.com"}, Roles: []string{"database", "backup"}}, nil).
		Times(1)
	mockSource.EXPECT().
		GetNode(gomock.Any(), "db-01.example.com").
		Return(&api.Node{Name: "db-01", FQDN: "db-01.example.com", Roles: []string{"backup"}}, nil).
		Times(1)

	status, reply := getMember(t, newTestHandlers(mockSource), "/v1/whitelists/backups/member?host=db-01.example.com")

	require.Equal(t, http.StatusOK, status)
	require.True(t, reply.Member)
	require.Equal(t, "role", reply.MatchedBy)
}

func TestMemberAbsentRolesNeverTouchesNodes(t *testing.T) {
	mockCtrl := gomock.NewController(t)

	// no GetNode expectation: a record without a roles key must answer
	// false straight after the pattern miss
	mockSource := mock.NewMockSource(mockCtrl)
	mockSource.EXPECT().
		GetWhitelist(gomock.Any(), "whitelist", "web", "patterns").
		Return(&whitelist.Record{Patterns: []string{"web-*.example.com"}}, nil).
		Times(1)

	status, reply := getMember(t, newTestHandlers(mockSource), "/v1/whitelists/web/member?host=db-01.example.com")

	require.Equal(t, http.StatusOK, status)
	require.False(t, reply.Member)
	require.Equal(t, "none", reply.MatchedBy)
}

func TestMemberSourceFailureAnswersFalse(t *testing.T) {
	mockCtrl := gomock.NewController(t)

	mockSource := mock.NewMockSource(mockCtrl)
	mockSource.EXPECT().
		GetWhitelist(gomock.Any(), "whitelist", "web", "patterns").
		Return(nil, errors.New("connection refused")).
		Times(1)

	status, reply := getMember(t, newTestHandlers(mockSource), "/v1/whitelists/web/member?host=web-1.example.com")

	require.Equal(t, http.StatusOK, status)
	require.False(t, reply.Member)
	require.Equal(t, "none", reply.MatchedBy)
}

func TestMemberCustomBagAndAttribute(t *testing.T) {
	mockCtrl := gomock.NewController(t)

	mockSource := mock.NewMockSource(mockCtrl)
	mockSource.EXPECT().
		GetWhitelist(gomock.Any(), "maintenance", "web-servers", "hosts").
		Return(&whitelist.Record{Patterns: []string{"web-1.example.com"}}, nil).
		Times(1)

	status, reply := getMember(t, newTestHandlers(mockSource),
		"/v1/whitelists/web-servers/member?host=web-1.example.com&bag=maintenance&attribute=hosts")

	require.Equal(t, http.StatusOK, status)
	require.True(t, reply.Member)
}

func TestMemberStripsPortAndTrailingDot(t *testing.T) {
	mockCtrl := gomock.NewController(t)

	mockSource := mock.NewMockSource(mockCtrl)
	mockSource.EXPECT().
		GetWhitelist(gomock.Any(), "whitelist", "web", "patterns").
		Return(&whitelist.Record{Patterns: []string{"web-1.example.com"}}, nil).
		Times(1)

	status, reply := getMember(t, newTestHandlers(mockSource), "/v1/whitelists/web/member?host=web-1.example.com.%3A8080")

	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "web-1.example.com", reply.Host)
	require.True(t, reply.Member)
}

func TestMemberWithoutHost(t *testing.T) {
	mockCtrl := gomock.NewController(t)

	mockSource := mock.NewMockSource(mockCtrl)

	status, _ := getMember(t, newTestHandlers(mockSource), "/v1/whitelists/web/member")

	require.Equal(t, http.StatusBadRequest, status)
}

func TestUnknownRoute(t *testing.T) {
	mockCtrl := gomock.NewController(t)

	mockSource := mock.NewMockSource(mockCtrl)

	status, _ := getMember(t, newTestHandlers(mockSource), "/v1/whitelists/web/everyone")

	require.Equal(t, http.StatusNotFound, status)
}
