package businessflow

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/apexhq/outreach-engine/app/services"
	"github.com/apexhq/outreach-engine/models"
)

// In-memory repository fakes. They implement just enough filtering to back
// the flows; ordering follows insertion order unless a test needs otherwise.

type fakeCampaignRepo struct {
	items  map[uint]*models.Campaign
	nextID uint
}

func newFakeCampaignRepo() *fakeCampaignRepo {
	return &fakeCampaignRepo{items: make(map[uint]*models.Campaign), nextID: 1}
}

func (r *fakeCampaignRepo) ByID(_ context.Context, id uint) (*models.Campaign, error) {
	return r.items[id], nil
}

func (r *fakeCampaignRepo) ByUUID(_ context.Context, uuidStr string) (*models.Campaign, error) {
	for _, c := range r.items {
		if c.UUID.String() == uuidStr {
			return c, nil
		}
	}
	return nil, nil
}

func (r *fakeCampaignRepo) ByFilter(_ context.Context, filter models.CampaignFilter, _ string, limit, offset int) ([]*models.Campaign, error) {
	var out []*models.Campaign
	for _, c := range r.sorted() {
		if filter.UserID != nil && c.UserID != *filter.UserID {
			continue
		}
		if filter.Status != nil && c.Status != *filter.Status {
			continue
		}
		out = append(out, c)
	}
	return paginate(out, limit, offset), nil
}

func (r *fakeCampaignRepo) Save(_ context.Context, c *models.Campaign) error {
	if c.ID == 0 {
		c.ID = r.nextID
		r.nextID++
	}
	r.items[c.ID] = c
	return nil
}

func (r *fakeCampaignRepo) SaveBatch(ctx context.Context, cs []*models.Campaign) error {
	for _, c := range cs {
		if err := r.Save(ctx, c); err != nil {
			return err
		}
	}
	return nil
}

func (r *fakeCampaignRepo) Update(_ context.Context, c *models.Campaign) error {
	r.items[c.ID] = c
	return nil
}

func (r *fakeCampaignRepo) Count(ctx context.Context, filter models.CampaignFilter) (int64, error) {
	out, _ := r.ByFilter(ctx, filter, "", 0, 0)
	return int64(len(out)), nil
}

func (r *fakeCampaignRepo) Exists(ctx context.Context, filter models.CampaignFilter) (bool, error) {
	n, _ := r.Count(ctx, filter)
	return n > 0, nil
}

func (r *fakeCampaignRepo) ListActive(_ context.Context) ([]*models.Campaign, error) {
	var out []*models.Campaign
	for _, c := range r.sorted() {
		if c.Status == models.CampaignStatusActive {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *fakeCampaignRepo) ListByUser(_ context.Context, userID uint, limit, offset int) ([]*models.Campaign, error) {
	var out []*models.Campaign
	for _, c := range r.sorted() {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	return paginate(out, limit, offset), nil
}

func (r *fakeCampaignRepo) UpdateStatus(_ context.Context, id uint, status models.CampaignStatus) error {
	if c, ok := r.items[id]; ok {
		c.Status = status
	}
	return nil
}

func (r *fakeCampaignRepo) IncrementCounter(_ context.Context, id uint, column string, delta int) error {
	c, ok := r.items[id]
	if !ok {
		return nil
	}
	switch column {
	case "connections_sent":
		c.ConnectionsSent += delta
	case "connections_accepted":
		c.ConnectionsAccepted += delta
	case "messages_sent":
		c.MessagesSent += delta
	case "replies_received":
		c.RepliesReceived += delta
	}
	return nil
}

func (r *fakeCampaignRepo) sorted() []*models.Campaign {
	out := make([]*models.Campaign, 0, len(r.items))
	for _, c := range r.items {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

type fakeProspectRepo struct {
	items  map[uint]*models.Prospect
	nextID uint
}

func newFakeProspectRepo() *fakeProspectRepo {
	return &fakeProspectRepo{items: make(map[uint]*models.Prospect), nextID: 1}
}

func (r *fakeProspectRepo) ByID(_ context.Context, id uint) (*models.Prospect, error) {
	return r.items[id], nil
}

func (r *fakeProspectRepo) ByFilter(_ context.Context, filter models.ProspectFilter, _ string, limit, offset int) ([]*models.Prospect, error) {
	var out []*models.Prospect
	for _, p := range r.sorted() {
		if filter.UserID != nil && p.UserID != *filter.UserID {
			continue
		}
		out = append(out, p)
	}
	return paginate(out, limit, offset), nil
}

func (r *fakeProspectRepo) Save(_ context.Context, p *models.Prospect) error {
	if p.ID == 0 {
		p.ID = r.nextID
		r.nextID++
	}
	r.items[p.ID] = p
	return nil
}

func (r *fakeProspectRepo) SaveBatch(ctx context.Context, ps []*models.Prospect) error {
	for _, p := range ps {
		if err := r.Save(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

func (r *fakeProspectRepo) Update(_ context.Context, p *models.Prospect) error {
	r.items[p.ID] = p
	return nil
}

func (r *fakeProspectRepo) Count(ctx context.Context, filter models.ProspectFilter) (int64, error) {
	out, _ := r.ByFilter(ctx, filter, "", 0, 0)
	return int64(len(out)), nil
}

func (r *fakeProspectRepo) Exists(ctx context.Context, filter models.ProspectFilter) (bool, error) {
	n, _ := r.Count(ctx, filter)
	return n > 0, nil
}

func (r *fakeProspectRepo) ByExternalProfileID(_ context.Context, userID uint, externalProfileID string) (*models.Prospect, error) {
	for _, p := range r.sorted() {
		if p.UserID == userID && p.ExternalProfileID == externalProfileID {
			return p, nil
		}
	}
	return nil, nil
}

func (r *fakeProspectRepo) UpdateConnectionStatus(_ context.Context, id uint, status models.ProspectConnectionStatus) error {
	if p, ok := r.items[id]; ok {
		p.ConnectionStatus = status
	}
	return nil
}

func (r *fakeProspectRepo) sorted() []*models.Prospect {
	out := make([]*models.Prospect, 0, len(r.items))
	for _, p := range r.items {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

type fakeLinkRepo struct {
	items  map[uint]*models.CampaignProspect
	nextID uint
}

func newFakeLinkRepo() *fakeLinkRepo {
	return &fakeLinkRepo{items: make(map[uint]*models.CampaignProspect), nextID: 1}
}

func (r *fakeLinkRepo) ByID(_ context.Context, id uint) (*models.CampaignProspect, error) {
	return r.items[id], nil
}

func (r *fakeLinkRepo) ByFilter(_ context.Context, filter models.CampaignProspectFilter, _ string, limit, offset int) ([]*models.CampaignProspect, error) {
	var out []*models.CampaignProspect
	for _, l := range r.sorted() {
		if filter.CampaignID != nil && l.CampaignID != *filter.CampaignID {
			continue
		}
		if filter.ProspectID != nil && l.ProspectID != *filter.ProspectID {
			continue
		}
		if filter.Status != nil && l.Status != *filter.Status {
			continue
		}
		out = append(out, l)
	}
	return paginate(out, limit, offset), nil
}

func (r *fakeLinkRepo) Save(_ context.Context, l *models.CampaignProspect) error {
	if l.ID == 0 {
		l.ID = r.nextID
		r.nextID++
	}
	r.items[l.ID] = l
	return nil
}

func (r *fakeLinkRepo) SaveBatch(ctx context.Context, ls []*models.CampaignProspect) error {
	for _, l := range ls {
		if err := r.Save(ctx, l); err != nil {
			return err
		}
	}
	return nil
}

func (r *fakeLinkRepo) Update(_ context.Context, l *models.CampaignProspect) error {
	r.items[l.ID] = l
	return nil
}

func (r *fakeLinkRepo) Count(ctx context.Context, filter models.CampaignProspectFilter) (int64, error) {
	out, _ := r.ByFilter(ctx, filter, "", 0, 0)
	return int64(len(out)), nil
}

func (r *fakeLinkRepo) Exists(ctx context.Context, filter models.CampaignProspectFilter) (bool, error) {
	n, _ := r.Count(ctx, filter)
	return n > 0, nil
}

func (r *fakeLinkRepo) ByCampaignAndProspect(_ context.Context, campaignID, prospectID uint) (*models.CampaignProspect, error) {
	for _, l := range r.sorted() {
		if l.CampaignID == campaignID && l.ProspectID == prospectID {
			return l, nil
		}
	}
	return nil, nil
}

func (r *fakeLinkRepo) ListQueued(_ context.Context, campaignID uint, limit int) ([]*models.CampaignProspect, error) {
	var out []*models.CampaignProspect
	for _, l := range r.sorted() {
		if l.CampaignID == campaignID && l.Status == models.CampaignProspectStatusQueued {
			out = append(out, l)
		}
	}
	return paginate(out, limit, 0), nil
}

func (r *fakeLinkRepo) ListDueFollowUps(_ context.Context, campaignID uint, due time.Time, limit int) ([]*models.CampaignProspect, error) {
	var out []*models.CampaignProspect
	for _, l := range r.sorted() {
		if l.CampaignID == campaignID && l.IsFollowUpEligible(due) {
			out = append(out, l)
		}
	}
	return paginate(out, limit, 0), nil
}

func (r *fakeLinkRepo) ListTracked(_ context.Context, campaignID uint) ([]*models.CampaignProspect, error) {
	var out []*models.CampaignProspect
	for _, l := range r.sorted() {
		if l.CampaignID != campaignID {
			continue
		}
		switch l.Status {
		case models.CampaignProspectStatusConnectionSent,
			models.CampaignProspectStatusConnectionAccepted,
			models.CampaignProspectStatusMessageSent:
			out = append(out, l)
		}
	}
	return out, nil
}

func (r *fakeLinkRepo) CountConnectionsSentSince(_ context.Context, campaignID uint, since time.Time) (int64, error) {
	var n int64
	for _, l := range r.items {
		if l.CampaignID == campaignID && l.ConnectionSentAt != nil && !l.ConnectionSentAt.Before(since) {
			n++
		}
	}
	return n, nil
}

func (r *fakeLinkRepo) CountMessagesSentSince(_ context.Context, campaignID uint, since time.Time) (int64, error) {
	var n int64
	for _, l := range r.items {
		if l.CampaignID == campaignID && l.LastMessageSentAt != nil && !l.LastMessageSentAt.Before(since) {
			n++
		}
	}
	return n, nil
}

func (r *fakeLinkRepo) CountInStatuses(_ context.Context, campaignID uint, statuses []models.CampaignProspectStatus) (int64, error) {
	var n int64
	for _, l := range r.items {
		if l.CampaignID != campaignID {
			continue
		}
		for _, s := range statuses {
			if l.Status == s {
				n++
				break
			}
		}
	}
	return n, nil
}

func (r *fakeLinkRepo) CountScheduledFollowUps(_ context.Context, campaignID uint) (int64, error) {
	var n int64
	for _, l := range r.items {
		if l.CampaignID == campaignID && l.NextFollowUpAt != nil && !l.Status.IsTerminal() {
			n++
		}
	}
	return n, nil
}

func (r *fakeLinkRepo) sorted() []*models.CampaignProspect {
	out := make([]*models.CampaignProspect, 0, len(r.items))
	for _, l := range r.items {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

type fakePendingRepo struct {
	items  map[uint]*models.PendingAction
	nextID uint
}

func newFakePendingRepo() *fakePendingRepo {
	return &fakePendingRepo{items: make(map[uint]*models.PendingAction), nextID: 1}
}

func (r *fakePendingRepo) ByID(_ context.Context, id uint) (*models.PendingAction, error) {
	return r.items[id], nil
}

func (r *fakePendingRepo) ByUUID(_ context.Context, uuidStr string) (*models.PendingAction, error) {
	for _, a := range r.sorted() {
		if a.UUID.String() == uuidStr {
			return a, nil
		}
	}
	return nil, nil
}

func (r *fakePendingRepo) ByFilter(_ context.Context, filter models.PendingActionFilter, _ string, limit, offset int) ([]*models.PendingAction, error) {
	var out []*models.PendingAction
	for _, a := range r.sorted() {
		if filter.UserID != nil && a.UserID != *filter.UserID {
			continue
		}
		if filter.CampaignID != nil && a.CampaignID != *filter.CampaignID {
			continue
		}
		if filter.ProspectID != nil && a.ProspectID != *filter.ProspectID {
			continue
		}
		if filter.ActionType != nil && a.ActionType != *filter.ActionType {
			continue
		}
		if filter.Status != nil && a.Status != *filter.Status {
			continue
		}
		if filter.ExpiresAfter != nil && (a.ExpiresAt == nil || !a.ExpiresAt.After(*filter.ExpiresAfter)) {
			continue
		}
		out = append(out, a)
	}
	return paginate(out, limit, offset), nil
}

func (r *fakePendingRepo) Save(_ context.Context, a *models.PendingAction) error {
	if a.ID == 0 {
		a.ID = r.nextID
		r.nextID++
	}
	r.items[a.ID] = a
	return nil
}

func (r *fakePendingRepo) SaveBatch(ctx context.Context, as []*models.PendingAction) error {
	for _, a := range as {
		if err := r.Save(ctx, a); err != nil {
			return err
		}
	}
	return nil
}

func (r *fakePendingRepo) Update(_ context.Context, a *models.PendingAction) error {
	r.items[a.ID] = a
	return nil
}

func (r *fakePendingRepo) Count(ctx context.Context, filter models.PendingActionFilter) (int64, error) {
	out, _ := r.ByFilter(ctx, filter, "", 0, 0)
	return int64(len(out)), nil
}

func (r *fakePendingRepo) Exists(ctx context.Context, filter models.PendingActionFilter) (bool, error) {
	n, _ := r.Count(ctx, filter)
	return n > 0, nil
}

func (r *fakePendingRepo) ListActionable(_ context.Context, userID uint, now time.Time, limit, offset int) ([]*models.PendingAction, error) {
	var out []*models.PendingAction
	for _, a := range r.sorted() {
		if a.UserID == userID && a.IsActionable(now) {
			out = append(out, a)
		}
	}
	return paginate(out, limit, offset), nil
}

func (r *fakePendingRepo) CountPendingByCampaign(_ context.Context, campaignID uint) (int64, error) {
	var n int64
	for _, a := range r.items {
		if a.CampaignID == campaignID && a.Status == models.PendingActionStatusPending {
			n++
		}
	}
	return n, nil
}

func (r *fakePendingRepo) ExpireOldActions(_ context.Context, now time.Time) (int64, error) {
	var n int64
	for _, a := range r.items {
		if a.Status == models.PendingActionStatusPending && a.ExpiresAt != nil && !a.ExpiresAt.After(now) {
			a.Status = models.PendingActionStatusExpired
			resolved := now
			a.ResolvedAt = &resolved
			n++
		}
	}
	return n, nil
}

func (r *fakePendingRepo) sorted() []*models.PendingAction {
	out := make([]*models.PendingAction, 0, len(r.items))
	for _, a := range r.items {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

type fakeActivityRepo struct {
	items  []*models.ActivityLog
	nextID uint
}

func newFakeActivityRepo() *fakeActivityRepo {
	return &fakeActivityRepo{}
}

func (r *fakeActivityRepo) ByID(_ context.Context, id uint) (*models.ActivityLog, error) {
	for _, e := range r.items {
		if e.ID == id {
			return e, nil
		}
	}
	return nil, nil
}

func (r *fakeActivityRepo) ByFilter(_ context.Context, filter models.ActivityLogFilter, _ string, limit, offset int) ([]*models.ActivityLog, error) {
	var out []*models.ActivityLog
	for _, e := range r.items {
		if filter.UserID != nil && e.UserID != *filter.UserID {
			continue
		}
		if filter.Activity != nil && e.Activity != *filter.Activity {
			continue
		}
		out = append(out, e)
	}
	return paginate(out, limit, offset), nil
}

func (r *fakeActivityRepo) Save(_ context.Context, e *models.ActivityLog) error {
	r.nextID++
	e.ID = r.nextID
	r.items = append(r.items, e)
	return nil
}

func (r *fakeActivityRepo) SaveBatch(ctx context.Context, es []*models.ActivityLog) error {
	for _, e := range es {
		if err := r.Save(ctx, e); err != nil {
			return err
		}
	}
	return nil
}

func (r *fakeActivityRepo) Update(_ context.Context, _ *models.ActivityLog) error {
	return nil
}

func (r *fakeActivityRepo) Count(ctx context.Context, filter models.ActivityLogFilter) (int64, error) {
	out, _ := r.ByFilter(ctx, filter, "", 0, 0)
	return int64(len(out)), nil
}

func (r *fakeActivityRepo) Exists(ctx context.Context, filter models.ActivityLogFilter) (bool, error) {
	n, _ := r.Count(ctx, filter)
	return n > 0, nil
}

func (r *fakeActivityRepo) ListByCampaign(_ context.Context, campaignID uint, limit, offset int) ([]*models.ActivityLog, error) {
	var out []*models.ActivityLog
	for _, e := range r.items {
		if e.CampaignID != nil && *e.CampaignID == campaignID {
			out = append(out, e)
		}
	}
	return paginate(out, limit, offset), nil
}

func (r *fakeActivityRepo) ListByUser(_ context.Context, userID uint, limit, offset int) ([]*models.ActivityLog, error) {
	var out []*models.ActivityLog
	for _, e := range r.items {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	return paginate(out, limit, offset), nil
}

func (r *fakeActivityRepo) byActivity(activity string) []*models.ActivityLog {
	var out []*models.ActivityLog
	for _, e := range r.items {
		if e.Activity == activity {
			out = append(out, e)
		}
	}
	return out
}

type fakeSettingsRepo struct {
	items map[uint]*models.UserSettings
}

func newFakeSettingsRepo() *fakeSettingsRepo {
	return &fakeSettingsRepo{items: make(map[uint]*models.UserSettings)}
}

func (r *fakeSettingsRepo) ByID(_ context.Context, id uint) (*models.UserSettings, error) {
	for _, s := range r.items {
		if s.ID == id {
			return s, nil
		}
	}
	return nil, nil
}

func (r *fakeSettingsRepo) ByFilter(_ context.Context, filter models.UserSettingsFilter, _ string, limit, offset int) ([]*models.UserSettings, error) {
	var out []*models.UserSettings
	for _, s := range r.items {
		if filter.UserID != nil && s.UserID != *filter.UserID {
			continue
		}
		out = append(out, s)
	}
	return paginate(out, limit, offset), nil
}

func (r *fakeSettingsRepo) Save(_ context.Context, s *models.UserSettings) error {
	r.items[s.UserID] = s
	return nil
}

func (r *fakeSettingsRepo) SaveBatch(ctx context.Context, ss []*models.UserSettings) error {
	for _, s := range ss {
		if err := r.Save(ctx, s); err != nil {
			return err
		}
	}
	return nil
}

func (r *fakeSettingsRepo) Update(_ context.Context, s *models.UserSettings) error {
	r.items[s.UserID] = s
	return nil
}

func (r *fakeSettingsRepo) Count(ctx context.Context, filter models.UserSettingsFilter) (int64, error) {
	out, _ := r.ByFilter(ctx, filter, "", 0, 0)
	return int64(len(out)), nil
}

func (r *fakeSettingsRepo) Exists(ctx context.Context, filter models.UserSettingsFilter) (bool, error) {
	n, _ := r.Count(ctx, filter)
	return n > 0, nil
}

func (r *fakeSettingsRepo) ByUserID(_ context.Context, userID uint) (*models.UserSettings, error) {
	return r.items[userID], nil
}

type fakeAccountRepo struct {
	items  map[uint]*models.LinkedAccount
	nextID uint
}

func newFakeAccountRepo() *fakeAccountRepo {
	return &fakeAccountRepo{items: make(map[uint]*models.LinkedAccount), nextID: 1}
}

func (r *fakeAccountRepo) ByID(_ context.Context, id uint) (*models.LinkedAccount, error) {
	return r.items[id], nil
}

func (r *fakeAccountRepo) ByFilter(_ context.Context, filter models.LinkedAccountFilter, _ string, limit, offset int) ([]*models.LinkedAccount, error) {
	var out []*models.LinkedAccount
	for _, a := range r.items {
		if filter.UserID != nil && a.UserID != *filter.UserID {
			continue
		}
		if filter.Status != nil && a.Status != *filter.Status {
			continue
		}
		out = append(out, a)
	}
	return paginate(out, limit, offset), nil
}

func (r *fakeAccountRepo) Save(_ context.Context, a *models.LinkedAccount) error {
	if a.ID == 0 {
		a.ID = r.nextID
		r.nextID++
	}
	r.items[a.ID] = a
	return nil
}

func (r *fakeAccountRepo) SaveBatch(ctx context.Context, as []*models.LinkedAccount) error {
	for _, a := range as {
		if err := r.Save(ctx, a); err != nil {
			return err
		}
	}
	return nil
}

func (r *fakeAccountRepo) Update(_ context.Context, a *models.LinkedAccount) error {
	r.items[a.ID] = a
	return nil
}

func (r *fakeAccountRepo) Count(ctx context.Context, filter models.LinkedAccountFilter) (int64, error) {
	out, _ := r.ByFilter(ctx, filter, "", 0, 0)
	return int64(len(out)), nil
}

func (r *fakeAccountRepo) Exists(ctx context.Context, filter models.LinkedAccountFilter) (bool, error) {
	n, _ := r.Count(ctx, filter)
	return n > 0, nil
}

func (r *fakeAccountRepo) ListActiveByUser(_ context.Context, userID uint) ([]*models.LinkedAccount, error) {
	var out []*models.LinkedAccount
	for _, a := range r.items {
		if a.UserID == userID && a.Status == models.LinkedAccountStatusActive {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *fakeAccountRepo) UpdateStatus(_ context.Context, id uint, status models.LinkedAccountStatus) error {
	if a, ok := r.items[id]; ok {
		a.Status = status
	}
	return nil
}

// fakeMessagingClient records every provider interaction
type fakeMessagingClient struct {
	configured bool

	searchResults []services.ProfileResult
	searchErr     error
	searches      []services.SearchFilters

	sentConnections    []string
	connectionAccounts []string
	connectionErrFor   map[string]error

	chats    []services.Chat
	chatsErr error

	messagesByChat map[string][]services.ChatMessage

	startedChats   []string
	startChatErr   error
	sentMessages   map[string][]string
	sendMessageErr error
}

func newFakeMessagingClient() *fakeMessagingClient {
	return &fakeMessagingClient{
		configured:       true,
		connectionErrFor: make(map[string]error),
		messagesByChat:   make(map[string][]services.ChatMessage),
		sentMessages:     make(map[string][]string),
	}
}

func (c *fakeMessagingClient) IsConfigured(_ context.Context) bool {
	return c.configured
}

func (c *fakeMessagingClient) SearchProfiles(_ context.Context, _ string, filters services.SearchFilters, limit int) ([]services.ProfileResult, error) {
	c.searches = append(c.searches, filters)
	if c.searchErr != nil {
		return nil, c.searchErr
	}
	if limit > 0 && len(c.searchResults) > limit {
		return c.searchResults[:limit], nil
	}
	return c.searchResults, nil
}

func (c *fakeMessagingClient) SendConnectionRequest(_ context.Context, accountID string, externalProfileID, _ string) error {
	if err, ok := c.connectionErrFor[externalProfileID]; ok {
		return err
	}
	c.sentConnections = append(c.sentConnections, externalProfileID)
	c.connectionAccounts = append(c.connectionAccounts, accountID)
	return nil
}

func (c *fakeMessagingClient) GetChats(_ context.Context, _ string) ([]services.Chat, error) {
	if c.chatsErr != nil {
		return nil, c.chatsErr
	}
	return c.chats, nil
}

func (c *fakeMessagingClient) StartChat(_ context.Context, _ string, externalProfileID, firstMessage string) (string, error) {
	if c.startChatErr != nil {
		return "", c.startChatErr
	}
	chatID := "chat-" + externalProfileID
	c.startedChats = append(c.startedChats, externalProfileID)
	c.chats = append(c.chats, services.Chat{
		ID:        chatID,
		Attendees: []services.ChatAttendee{{ExternalProfileID: externalProfileID}},
	})
	_ = firstMessage
	return chatID, nil
}

func (c *fakeMessagingClient) SendMessage(_ context.Context, chatID, message string) error {
	if c.sendMessageErr != nil {
		return c.sendMessageErr
	}
	c.sentMessages[chatID] = append(c.sentMessages[chatID], message)
	return nil
}

func (c *fakeMessagingClient) GetChatMessages(_ context.Context, chatID string) ([]services.ChatMessage, error) {
	return c.messagesByChat[chatID], nil
}

// fakeLocker grants or refuses the run lease
type fakeLocker struct {
	held     bool
	acquired int
}

func (l *fakeLocker) Acquire(_ context.Context, _ uint) (func(), error) {
	if l.held {
		return nil, ErrCampaignRunInProgress
	}
	l.acquired++
	return func() {}, nil
}

func paginate[T any](items []*T, limit, offset int) []*T {
	if offset > 0 {
		if offset >= len(items) {
			return nil
		}
		items = items[offset:]
	}
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items
}

// testEnv bundles the fakes and a fully wired flow impl
type testEnv struct {
	campaigns *fakeCampaignRepo
	prospects *fakeProspectRepo
	links     *fakeLinkRepo
	pending   *fakePendingRepo
	activity  *fakeActivityRepo
	settings  *fakeSettingsRepo
	accounts  *fakeAccountRepo
	client    *fakeMessagingClient
	locker    *fakeLocker
	flow      *OutreachFlowImpl
}

func newTestEnv() *testEnv {
	env := &testEnv{
		campaigns: newFakeCampaignRepo(),
		prospects: newFakeProspectRepo(),
		links:     newFakeLinkRepo(),
		pending:   newFakePendingRepo(),
		activity:  newFakeActivityRepo(),
		settings:  newFakeSettingsRepo(),
		accounts:  newFakeAccountRepo(),
		client:    newFakeMessagingClient(),
		locker:    &fakeLocker{},
	}
	env.flow = &OutreachFlowImpl{
		campaignRepo: env.campaigns,
		prospectRepo: env.prospects,
		linkRepo:     env.links,
		pendingRepo:  env.pending,
		activityRepo: env.activity,
		settingsRepo: env.settings,
		accountRepo:  env.accounts,
		credentials:  testCredentialStore(),
		newClient:    func(string) services.MessagingClient { return env.client },
		locker:       env.locker,
	}
	return env
}

func testCredentialStore() *services.CredentialStore {
	store, err := services.NewCredentialStore(strings.Repeat("ab", 32))
	if err != nil {
		panic(err)
	}
	return store
}

// seedCampaign creates an active campaign with a usable linked account and
// the given autopilot flag
func (env *testEnv) seedCampaign(autopilot bool) *models.Campaign {
	campaign := &models.Campaign{
		UserID:               7,
		Name:                 "Founders EU",
		Status:               models.CampaignStatusActive,
		JobTitles:            []string{"Founder"},
		Locations:            []string{"Berlin"},
		DailyConnectionLimit: 25,
		DailyMessageLimit:    50,
		ConnectionMessage:    "Hi, let's connect",
		FollowUpMessage1:     "Thanks for connecting!",
		FollowUpMessage2:     "Circling back.",
		FollowUpDelayDays1:   3,
		FollowUpDelayDays2:   7,
		FollowUpDelayDays3:   14,
	}
	_ = campaign.BeforeCreate()
	_ = env.campaigns.Save(context.Background(), campaign)

	sealed, err := testCredentialStore().Seal("test-api-key")
	if err != nil {
		panic(err)
	}
	account := &models.LinkedAccount{
		UserID:              campaign.UserID,
		ProviderAccountID:   "acct-1",
		Status:              models.LinkedAccountStatusActive,
		EncryptedCredential: sealed,
	}
	_ = account.BeforeCreate()
	_ = env.accounts.Save(context.Background(), account)

	_ = env.settings.Save(context.Background(), &models.UserSettings{
		ID:               1,
		UserID:           campaign.UserID,
		AutopilotEnabled: autopilot,
	})

	return campaign
}

// seedProspectLink creates a prospect and links it to the campaign
func (env *testEnv) seedProspectLink(campaign *models.Campaign, profileID string, status models.CampaignProspectStatus) (*models.Prospect, *models.CampaignProspect) {
	prospect := &models.Prospect{
		UserID:            campaign.UserID,
		ExternalProfileID: profileID,
		FullName:          "Pat " + profileID,
		ConnectionStatus:  models.ProspectConnectionStatusNone,
	}
	_ = prospect.BeforeCreate()
	_ = env.prospects.Save(context.Background(), prospect)

	link := &models.CampaignProspect{
		CampaignID: campaign.ID,
		ProspectID: prospect.ID,
		Status:     status,
		Prospect:   prospect,
	}
	_ = link.BeforeCreate()
	_ = env.links.Save(context.Background(), link)
	return prospect, link
}

func (env *testEnv) agent(campaign *models.Campaign) AgentContext {
	return AgentContext{UserID: campaign.UserID}
}
