package impl

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"canopy/internal/domain/entity"
	"canopy/internal/domain/repository"
	"canopy/internal/domain/service"
	"canopy/internal/errors"
	"canopy/internal/usecase"
)

func newDiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// --- repository fakes ---

type fakeOrgRepo struct {
	orgs map[string]*entity.Org
}

func newFakeOrgRepo(orgs ...*entity.Org) *fakeOrgRepo {
	repo := &fakeOrgRepo{orgs: map[string]*entity.Org{}}
	for _, org := range orgs {
		repo.orgs[org.ID] = org
	}

	return repo
}

func (f *fakeOrgRepo) CreateOrg(_ context.Context, org *entity.Org) error {
	f.orgs[org.ID] = org

	return nil
}

func (f *fakeOrgRepo) FindOrgByID(_ context.Context, id string) (*entity.Org, error) {
	org, ok := f.orgs[id]
	if !ok {
		return nil, repository.ErrOrgNotFound
	}

	return org, nil
}

func (f *fakeOrgRepo) ListActiveOrgs(_ context.Context) ([]*entity.Org, error) {
	var active []*entity.Org
	for _, org := range f.orgs {
		if org.Active {
			active = append(active, org)
		}
	}

	return active, nil
}

func (f *fakeOrgRepo) UpdateOrg(_ context.Context, org *entity.Org) error {
	f.orgs[org.ID] = org

	return nil
}

type fakeTierRepo struct {
	tiers map[string]*entity.Tier
}

func (f *fakeTierRepo) FindTierByID(_ context.Context, id string) (*entity.Tier, error) {
	tier, ok := f.tiers[id]
	if !ok {
		return nil, repository.ErrTierNotFound
	}

	return tier, nil
}

type fakeUsageRepo struct {
	mu       sync.Mutex
	counters map[string]map[entity.UsageMetric]int64
}

func newFakeUsageRepo() *fakeUsageRepo {
	return &fakeUsageRepo{counters: map[string]map[entity.UsageMetric]int64{}}
}

func (f *fakeUsageRepo) FindUsage(_ context.Context, orgID, period string) (*entity.UsageRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	counters, ok := f.counters[entity.UsageDocID(orgID, period)]
	if !ok {
		return nil, repository.ErrUsageNotFound
	}

	return &entity.UsageRecord{OrgID: orgID, Period: period, Counters: counters}, nil
}

func (f *fakeUsageRepo) IncrementUsage(_ context.Context, orgID, period string, metric entity.UsageMetric, n int64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	docID := entity.UsageDocID(orgID, period)
	if f.counters[docID] == nil {
		f.counters[docID] = map[entity.UsageMetric]int64{}
	}
	f.counters[docID][metric] += n

	return f.counters[docID][metric], nil
}

type fakeProductRepo struct {
	products map[string]*entity.Product
}

func newFakeProductRepo(products ...*entity.Product) *fakeProductRepo {
	repo := &fakeProductRepo{products: map[string]*entity.Product{}}
	for _, product := range products {
		repo.products[product.ID] = product
	}

	return repo
}

func (f *fakeProductRepo) CreateProduct(_ context.Context, product *entity.Product) error {
	f.products[product.ID] = product

	return nil
}

func (f *fakeProductRepo) FindProductByID(_ context.Context, id string) (*entity.Product, error) {
	product, ok := f.products[id]
	if !ok {
		return nil, repository.ErrProductNotFound
	}

	return product, nil
}

func (f *fakeProductRepo) ListProducts(_ context.Context, orgID string, filter repository.ProductFilter) ([]*entity.Product, error) {
	var out []*entity.Product
	for _, product := range f.products {
		if product.OrgID != orgID {
			continue
		}
		if filter.ActiveOnly && !product.Active {
			continue
		}
		if filter.Category != "" && product.Category != filter.Category {
			continue
		}
		out = append(out, product)
	}

	return out, nil
}

func (f *fakeProductRepo) UpdateProduct(_ context.Context, product *entity.Product) error {
	f.products[product.ID] = product

	return nil
}

func (f *fakeProductRepo) DeleteProduct(_ context.Context, id string) error {
	delete(f.products, id)

	return nil
}

type fakeRetailerRepo struct {
	retailers map[string]*entity.Retailer
}

func newFakeRetailerRepo(retailers ...*entity.Retailer) *fakeRetailerRepo {
	repo := &fakeRetailerRepo{retailers: map[string]*entity.Retailer{}}
	for _, retailer := range retailers {
		repo.retailers[retailer.ID] = retailer
	}

	return repo
}

func (f *fakeRetailerRepo) CreateRetailer(_ context.Context, retailer *entity.Retailer) error {
	f.retailers[retailer.ID] = retailer

	return nil
}

func (f *fakeRetailerRepo) FindRetailerByID(_ context.Context, id string) (*entity.Retailer, error) {
	retailer, ok := f.retailers[id]
	if !ok {
		return nil, repository.ErrRetailerNotFound
	}

	return retailer, nil
}

func (f *fakeRetailerRepo) ListRetailers(_ context.Context, orgID string) ([]*entity.Retailer, error) {
	var out []*entity.Retailer
	for _, retailer := range f.retailers {
		if retailer.OrgID == orgID {
			out = append(out, retailer)
		}
	}

	return out, nil
}

func (f *fakeRetailerRepo) UpdateRetailer(_ context.Context, retailer *entity.Retailer) error {
	f.retailers[retailer.ID] = retailer

	return nil
}

type fakeCouponRepo struct {
	coupons map[string]*entity.Coupon // orgID_code
}

func newFakeCouponRepo(coupons ...*entity.Coupon) *fakeCouponRepo {
	repo := &fakeCouponRepo{coupons: map[string]*entity.Coupon{}}
	for _, coupon := range coupons {
		repo.coupons[coupon.OrgID+"_"+coupon.Code] = coupon
	}

	return repo
}

func (f *fakeCouponRepo) CreateCoupon(_ context.Context, coupon *entity.Coupon) error {
	f.coupons[coupon.OrgID+"_"+coupon.Code] = coupon

	return nil
}

func (f *fakeCouponRepo) FindCoupon(_ context.Context, orgID, code string) (*entity.Coupon, error) {
	coupon, ok := f.coupons[orgID+"_"+code]
	if !ok {
		return nil, repository.ErrCouponNotFound
	}

	return coupon, nil
}

func (f *fakeCouponRepo) ListCoupons(_ context.Context, orgID string) ([]*entity.Coupon, error) {
	var out []*entity.Coupon
	for _, coupon := range f.coupons {
		if coupon.OrgID == orgID {
			out = append(out, coupon)
		}
	}

	return out, nil
}

func (f *fakeCouponRepo) IncrementRedemptions(_ context.Context, orgID, code string) error {
	coupon, ok := f.coupons[orgID+"_"+code]
	if !ok {
		return repository.ErrCouponNotFound
	}
	coupon.Redeemed++

	return nil
}

func (f *fakeCouponRepo) UpdateCoupon(_ context.Context, coupon *entity.Coupon) error {
	f.coupons[coupon.OrgID+"_"+coupon.Code] = coupon

	return nil
}

type fakeOrderRepo struct {
	orders map[string]*entity.Order
}

func newFakeOrderRepo(orders ...*entity.Order) *fakeOrderRepo {
	repo := &fakeOrderRepo{orders: map[string]*entity.Order{}}
	for _, order := range orders {
		repo.orders[order.ID] = order
	}

	return repo
}

func (f *fakeOrderRepo) CreateOrder(_ context.Context, order *entity.Order) error {
	f.orders[order.ID] = order

	return nil
}

func (f *fakeOrderRepo) FindOrderByID(_ context.Context, id string) (*entity.Order, error) {
	order, ok := f.orders[id]
	if !ok {
		return nil, repository.ErrOrderNotFound
	}

	return order, nil
}

func (f *fakeOrderRepo) ListOrders(_ context.Context, orgID string, limit int) ([]*entity.Order, error) {
	var out []*entity.Order
	for _, order := range f.orders {
		if order.OrgID == orgID {
			out = append(out, order)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}

	return out, nil
}

func (f *fakeOrderRepo) UpdateOrderStatus(_ context.Context, id string, status entity.OrderStatus) error {
	order, ok := f.orders[id]
	if !ok {
		return repository.ErrOrderNotFound
	}
	order.Status = status
	order.UpdatedAt = time.Now().UTC()

	return nil
}

func (f *fakeOrderRepo) ListOrdersInStatusOlderThan(_ context.Context, status entity.OrderStatus, cutoff time.Time) ([]*entity.Order, error) {
	var out []*entity.Order
	for _, order := range f.orders {
		if order.Status == status && order.UpdatedAt.Before(cutoff) {
			out = append(out, order)
		}
	}

	return out, nil
}

func (f *fakeOrderRepo) FindLatestOrderTime(_ context.Context, orgID string) (time.Time, error) {
	var latest time.Time
	for _, order := range f.orders {
		if order.OrgID == orgID && order.CreatedAt.After(latest) {
			latest = order.CreatedAt
		}
	}

	return latest, nil
}

type fakePlaybookRepo struct {
	playbooks map[string]*entity.Playbook
	runs      []*entity.PlaybookRun
}

func newFakePlaybookRepo(playbooks ...*entity.Playbook) *fakePlaybookRepo {
	repo := &fakePlaybookRepo{playbooks: map[string]*entity.Playbook{}}
	for _, playbook := range playbooks {
		repo.playbooks[playbook.ID] = playbook
	}

	return repo
}

func (f *fakePlaybookRepo) CreatePlaybook(_ context.Context, playbook *entity.Playbook) error {
	f.playbooks[playbook.ID] = playbook

	return nil
}

func (f *fakePlaybookRepo) FindPlaybookByID(_ context.Context, id string) (*entity.Playbook, error) {
	playbook, ok := f.playbooks[id]
	if !ok {
		return nil, repository.ErrPlaybookNotFound
	}

	return playbook, nil
}

func (f *fakePlaybookRepo) ListPlaybooks(_ context.Context, orgID string) ([]*entity.Playbook, error) {
	var out []*entity.Playbook
	for _, playbook := range f.playbooks {
		if playbook.OrgID == orgID {
			out = append(out, playbook)
		}
	}

	return out, nil
}

func (f *fakePlaybookRepo) UpdatePlaybook(_ context.Context, playbook *entity.Playbook) error {
	f.playbooks[playbook.ID] = playbook

	return nil
}

func (f *fakePlaybookRepo) DeletePlaybook(_ context.Context, id string) error {
	delete(f.playbooks, id)

	return nil
}

func (f *fakePlaybookRepo) RecordRun(_ context.Context, run *entity.PlaybookRun) error {
	f.runs = append(f.runs, run)
	if playbook, ok := f.playbooks[run.PlaybookID]; ok {
		finished := run.FinishedAt
		playbook.LastRunAt = &finished
	}

	return nil
}

type fakeGoalRepo struct {
	goals map[string]*entity.GoalMetric
}

func newFakeGoalRepo(goals ...*entity.GoalMetric) *fakeGoalRepo {
	repo := &fakeGoalRepo{goals: map[string]*entity.GoalMetric{}}
	for _, goal := range goals {
		repo.goals[goal.ID] = goal
	}

	return repo
}

func (f *fakeGoalRepo) CreateGoal(_ context.Context, goal *entity.GoalMetric) error {
	f.goals[goal.ID] = goal

	return nil
}

func (f *fakeGoalRepo) FindGoalByID(_ context.Context, id string) (*entity.GoalMetric, error) {
	goal, ok := f.goals[id]
	if !ok {
		return nil, repository.ErrGoalNotFound
	}

	return goal, nil
}

func (f *fakeGoalRepo) ListGoals(_ context.Context, orgID string) ([]*entity.GoalMetric, error) {
	var out []*entity.GoalMetric
	for _, goal := range f.goals {
		if goal.OrgID == orgID {
			out = append(out, goal)
		}
	}

	return out, nil
}

func (f *fakeGoalRepo) UpdateGoal(_ context.Context, goal *entity.GoalMetric) error {
	f.goals[goal.ID] = goal

	return nil
}

func (f *fakeGoalRepo) DeleteGoal(_ context.Context, id string) error {
	delete(f.goals, id)

	return nil
}

type fakeLoyaltyRepo struct {
	settings map[string]*entity.LoyaltySettings
	saveErr  error
}

func newFakeLoyaltyRepo() *fakeLoyaltyRepo {
	return &fakeLoyaltyRepo{settings: map[string]*entity.LoyaltySettings{}}
}

func (f *fakeLoyaltyRepo) FindLoyaltySettings(_ context.Context, orgID string) (*entity.LoyaltySettings, error) {
	settings, ok := f.settings[orgID]
	if !ok {
		return nil, repository.ErrLoyaltySettingsNotFound
	}

	return settings, nil
}

func (f *fakeLoyaltyRepo) SaveLoyaltySettings(_ context.Context, settings *entity.LoyaltySettings) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.settings[settings.OrgID] = settings

	return nil
}

type fakePackagingRepo struct {
	analyses map[string]*entity.PackagingAnalysis
}

func newFakePackagingRepo() *fakePackagingRepo {
	return &fakePackagingRepo{analyses: map[string]*entity.PackagingAnalysis{}}
}

func (f *fakePackagingRepo) CreateAnalysis(_ context.Context, analysis *entity.PackagingAnalysis) error {
	f.analyses[analysis.ID] = analysis

	return nil
}

func (f *fakePackagingRepo) FindAnalysisByID(_ context.Context, id string) (*entity.PackagingAnalysis, error) {
	analysis, ok := f.analyses[id]
	if !ok {
		return nil, repository.ErrAnalysisNotFound
	}

	return analysis, nil
}

func (f *fakePackagingRepo) ListAnalyses(_ context.Context, orgID string) ([]*entity.PackagingAnalysis, error) {
	var out []*entity.PackagingAnalysis
	for _, analysis := range f.analyses {
		if analysis.OrgID == orgID {
			out = append(out, analysis)
		}
	}

	return out, nil
}

func (f *fakePackagingRepo) UpdateAnalysis(_ context.Context, analysis *entity.PackagingAnalysis) error {
	f.analyses[analysis.ID] = analysis

	return nil
}

type fakeIntelRepo struct {
	snapshots []*entity.CompetitorSnapshot
	scores    []*entity.ChurnScore
}

func (f *fakeIntelRepo) SaveSnapshot(_ context.Context, snapshot *entity.CompetitorSnapshot) error {
	f.snapshots = append(f.snapshots, snapshot)

	return nil
}

func (f *fakeIntelRepo) ListSnapshots(_ context.Context, orgID string, _ int) ([]*entity.CompetitorSnapshot, error) {
	var out []*entity.CompetitorSnapshot
	for _, snapshot := range f.snapshots {
		if snapshot.OrgID == orgID {
			out = append(out, snapshot)
		}
	}

	return out, nil
}

func (f *fakeIntelRepo) SaveChurnScores(_ context.Context, scores []*entity.ChurnScore) error {
	f.scores = append(f.scores, scores...)

	return nil
}

type fakeUserRepo struct {
	users map[string]*entity.User
}

func newFakeUserRepo(users ...*entity.User) *fakeUserRepo {
	repo := &fakeUserRepo{users: map[string]*entity.User{}}
	for _, user := range users {
		repo.users[user.ID] = user
	}

	return repo
}

func (f *fakeUserRepo) CreateUser(_ context.Context, user *entity.User) error {
	for _, existing := range f.users {
		if existing.Email == user.Email {
			return repository.ErrDuplicateUser
		}
	}
	f.users[user.ID] = user

	return nil
}

func (f *fakeUserRepo) FindUserByID(_ context.Context, id string) (*entity.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}

	return user, nil
}

func (f *fakeUserRepo) FindUserByEmail(_ context.Context, email string) (*entity.User, error) {
	for _, user := range f.users {
		if user.Email == email {
			return user, nil
		}
	}

	return nil, repository.ErrUserNotFound
}

func (f *fakeUserRepo) FindUserByGoogleSub(_ context.Context, sub string) (*entity.User, error) {
	for _, user := range f.users {
		if user.GoogleSub == sub {
			return user, nil
		}
	}

	return nil, repository.ErrUserNotFound
}

func (f *fakeUserRepo) UpdateUser(_ context.Context, user *entity.User) error {
	f.users[user.ID] = user

	return nil
}

// --- service fakes ---

type fakePublisher struct {
	events []*service.PlatformEvent
}

func (f *fakePublisher) PublishEvent(_ context.Context, event *service.PlatformEvent) error {
	f.events = append(f.events, event)

	return nil
}

func (f *fakePublisher) Close() error { return nil }

type fakeEmailSender struct {
	sent []*service.EmailMessage
	err  error
}

func (f *fakeEmailSender) Send(_ context.Context, msg *service.EmailMessage) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, msg)

	return nil
}

type fakeGateway struct {
	provider string
	err      error
	created  []string
}

func (f *fakeGateway) Provider() string { return f.provider }

func (f *fakeGateway) CreatePayment(_ context.Context, orderID string, _ int64, _ string) (*service.PaymentIntent, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.created = append(f.created, orderID)

	return &service.PaymentIntent{
		Provider:     f.provider,
		ExternalID:   "ext_" + orderID,
		ClientSecret: "secret_" + orderID,
	}, nil
}

func (f *fakeGateway) VerifyWebhook(_ *http.Request, _ []byte) (*service.PaymentEvent, error) {
	return nil, errors.New("not used in tests")
}

type fakeGatewayRegistry struct {
	gateway *fakeGateway
}

func (f *fakeGatewayRegistry) Primary() (service.PaymentGateway, error) {
	return f.gateway, nil
}

func (f *fakeGatewayRegistry) ByProvider(string) (service.PaymentGateway, error) {
	return f.gateway, nil
}

type fakeQRService struct{}

func (fakeQRService) GeneratePickupQR(string, string) ([]byte, error) {
	return []byte{0x89, 0x50, 0x4E, 0x47}, nil
}

type fakeAgent struct {
	reply string
	err   error
	calls int
}

func (f *fakeAgent) Complete(_ context.Context, _, _ string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}

	return f.reply, nil
}

type fakeCatalogClient struct {
	menus map[string][]service.CatalogProduct
	err   error
}

func (f *fakeCatalogClient) SearchProducts(_ context.Context, _ service.CatalogSearch) ([]service.CatalogProduct, error) {
	if f.err != nil {
		return nil, f.err
	}
	var all []service.CatalogProduct
	for _, menu := range f.menus {
		all = append(all, menu...)
	}

	return all, nil
}

func (f *fakeCatalogClient) GetRetailerMenu(_ context.Context, retailerKey string) ([]service.CatalogProduct, error) {
	if f.err != nil {
		return nil, f.err
	}

	return f.menus[retailerKey], nil
}

func (f *fakeCatalogClient) GetProduct(_ context.Context, _ string) (*service.CatalogProduct, error) {
	return nil, errors.New("not used in tests")
}

type fakeBlobStore struct {
	blobs map[string][]byte
	err   error
}

func newFakeBlobStore() *fakeBlobStore {
	return &fakeBlobStore{blobs: map[string][]byte{}}
}

func (f *fakeBlobStore) Put(_ context.Context, key string, data []byte, _ string) error {
	if f.err != nil {
		return f.err
	}
	f.blobs[key] = data

	return nil
}

func (f *fakeBlobStore) Get(_ context.Context, key string) ([]byte, error) {
	data, ok := f.blobs[key]
	if !ok {
		return nil, errors.New("blob not found")
	}

	return data, nil
}

type fakeOAuth struct {
	user *service.OAuthUser
	err  error
}

func (f *fakeOAuth) VerifyIDToken(_ context.Context, _ string) (*service.OAuthUser, error) {
	if f.err != nil {
		return nil, f.err
	}

	return f.user, nil
}

type fakeTokenService struct{}

func (fakeTokenService) GenerateTokens(userID, orgID string, _ []string) (string, string, error) {
	return "access_" + userID, "refresh_" + userID + "_" + orgID, nil
}

func (fakeTokenService) ValidateAccessToken(string) (*service.Claims, error) {
	return nil, errors.New("not used in tests")
}

func (fakeTokenService) ValidateRefreshToken(token string) (*service.Claims, error) {
	if len(token) < 8 || token[:8] != "refresh_" {
		return nil, errors.New("invalid refresh token")
	}

	return &service.Claims{UserID: "user-1", Type: "refresh"}, nil
}

func (fakeTokenService) GetRefreshTokenDuration() time.Duration { return time.Hour }

type fakeHasher struct{}

func (fakeHasher) Hash(password string) (string, error) { return "hash:" + password, nil }

func (fakeHasher) Check(password, hash string) bool { return hash == "hash:"+password }

func (fakeHasher) ValidatePasswordStrength(password string) error {
	if len(password) < 8 {
		return errors.New("too short")
	}

	return nil
}

// fakeUsageUsecase stands in for the metering service when another
// usecase only needs RecordUsage to succeed or fail.
type fakeUsageUsecase struct {
	recorded  []entity.UsageMetric
	err       error
	summaries map[string]*entity.UsageSummary
}

func (f *fakeUsageUsecase) GetUsageWithLimits(_ context.Context, orgID string) (*entity.UsageSummary, error) {
	if summary, ok := f.summaries[orgID]; ok {
		return summary, nil
	}

	return &entity.UsageSummary{OrgID: orgID}, nil
}

func (f *fakeUsageUsecase) RecordUsage(_ context.Context, _ string, metric entity.UsageMetric, _ int64) (*usecase.RecordUsageOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.recorded = append(f.recorded, metric)

	return &usecase.RecordUsageOutput{Metric: metric}, nil
}
