package main

import (
	"github.com/iov-one/autoshare"
	"github.com/iov-one/autoshare/app"
	"github.com/iov-one/autoshare/x/admin"
	"github.com/iov-one/autoshare/x/auth"
	"github.com/iov-one/autoshare/x/cash"
	"github.com/iov-one/autoshare/x/distribution"
	"github.com/iov-one/autoshare/x/group"
	"github.com/iov-one/autoshare/x/utils"
	"github.com/prometheus/client_golang/prometheus"
)

// Application is everything the ledger host needs, resolved from the
// extensions.
type Application struct {
	Handler     autoshare.Handler
	Initializer autoshare.Initializer
	Decoder     *app.TxDecoder
	Bank        cash.Controller
}

// NewApplication wires all extensions. Metrics are registered with reg.
func NewApplication(reg prometheus.Registerer) (*Application, error) {
	metrics, err := utils.NewMetrics(reg)
	if err != nil {
		return nil, err
	}

	authenticator := auth.Authenticate{}
	bank := cash.NewController(cash.NewWalletBucket())
	settings := admin.NewController()

	router := app.NewRouter()
	cash.RegisterRoutes(router, authenticator, bank)
	admin.RegisterRoutes(router, authenticator, bank)
	group.RegisterRoutes(router, authenticator, settings, bank)
	distribution.RegisterRoutes(router, authenticator, settings, bank)

	handler := app.ChainDecorators(
		utils.NewLogging(),
		utils.NewRecovery(),
		metrics,
		auth.NewDecorator(),
		utils.NewSavepoint().OnDeliver(),
	).WithHandler(router)

	decoder := app.NewTxDecoder(
		&cash.SendMsg{},

		&admin.InitAdminMsg{},
		&admin.TransferAdminMsg{},
		&admin.PauseMsg{},
		&admin.UnpauseMsg{},
		&admin.SetUsageFeeMsg{},
		&admin.AddTokenMsg{},
		&admin.RemoveTokenMsg{},
		&admin.WithdrawMsg{},

		&group.CreateMsg{},
		&group.AddMemberMsg{},
		&group.RemoveMemberMsg{},
		&group.UpdateMembersMsg{},
		&group.ActivateMsg{},
		&group.DeactivateMsg{},
		&group.TopUpMsg{},
		&group.DeleteMsg{},

		&distribution.DistributeMsg{},
	)

	return &Application{
		Handler: handler,
		Initializer: app.ChainInitializers(
			cash.Initializer{},
			admin.Initializer{},
			group.Initializer{},
		),
		Decoder: decoder,
		Bank:    bank,
	}, nil
}
