// Package firestore contains the concrete implementation of the
// persistence layer on Cloud Firestore.
package firestore

import (
	"context"
	"log/slog"

	"canopy/config"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"github.com/pkg/errors"
	"go.uber.org/fx"
	"google.golang.org/api/option"
)

// Collection names. Every document carries an orgId field; queries are
// always scoped to it.
const (
	collOrgs         = "orgs"
	collUsers        = "users"
	collTiers        = "tiers"
	collProducts     = "products"
	collRetailers    = "retailers"
	collCoupons      = "coupons"
	collOrders       = "orders"
	collUsage        = "usage"
	collPlaybooks    = "playbooks"
	collPlaybookRuns = "playbook_runs"
	collGoals        = "goals"
	collPackaging    = "packaging_analyses"
	collIntel        = "competitor_snapshots"
	collChurn        = "churn_scores"
	collLoyalty      = "loyalty_settings"
	collCatalogCache = "catalog_cache"
)

// Params holds dependencies for the Firestore client, injected by Fx.
type Params struct {
	fx.In
	fx.Lifecycle

	Ctx    context.Context
	Config *config.Config
	Logger *slog.Logger
}

// New initializes the Firestore client through the Firebase app.
func New(params Params) (*firestore.Client, error) {
	cfg := params.Config.Firebase

	var opts []option.ClientOption
	if cfg.CredentialsPath != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsPath))
	}

	app, err := firebase.NewApp(params.Ctx, &firebase.Config{ProjectID: cfg.ProjectID}, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "initialize firebase app")
	}

	client, err := app.Firestore(params.Ctx)
	if err != nil {
		return nil, errors.Wrap(err, "initialize firestore client")
	}

	params.Append(fx.Hook{
		OnStop: func(context.Context) error {
			params.Logger.Info("Closing Firestore client")

			return client.Close()
		},
	})

	return client, nil
}
