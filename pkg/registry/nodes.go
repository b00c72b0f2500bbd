package registry

import (
	"github.com/fluxo-hq/fluxo/pkg/nodes/httprequest"
	"github.com/fluxo-hq/fluxo/pkg/nodes/manualtrigger"
	"github.com/fluxo-hq/fluxo/pkg/nodes/scheduletrigger"
	"github.com/fluxo-hq/fluxo/pkg/nodes/sendemail"
	"github.com/fluxo-hq/fluxo/pkg/nodes/transform"
	"github.com/fluxo-hq/fluxo/pkg/protocol"
)

// RegisterDefaultNodes registers every built-in node factory. The mailer is
// injected so tests can swap the Gmail transport out.
func (r *Registry) RegisterDefaultNodes(mailer protocol.Mailer) {
	r.RegisterNode(manualtrigger.NewFactory())
	r.RegisterNode(scheduletrigger.NewFactory())
	r.RegisterNode(httprequest.NewFactory())
	r.RegisterNode(transform.NewFactory())
	r.RegisterNode(sendemail.NewFactory(mailer))
}
