// Package ytcontrol provides an embeddable bridge between a control surface
// and YouTube Live broadcasts.
//
// The service authorizes against the YouTube Data API, keeps a polled cache
// of the channel's broadcasts and stream health, and projects it onto a host
// surface as variables, feedbacks, presets and actions. The surface is served
// over HTTP for control surfaces to consume.
//
// # Basic Usage
//
//	cfg := ytcontrol.DefaultConfig()
//	cfg.Module.ClientID = "client-id.apps.googleusercontent.com"
//	cfg.Module.ClientSecret = "client-secret"
//
//	svc, err := ytcontrol.New(cfg, ytcontrol.WithConfigPath(path))
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
//	defer stop()
//	if err := svc.Run(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
// # Event Handling
//
// Implement [EventHandler] (embedding [BaseEventHandler] for defaults) and
// pass it via [WithEventHandler] to observe phase changes, projections and
// action outcomes. Events are called synchronously and must return quickly.
//
// # Phases
//
// The module moves between [PhaseUninitialized], [PhaseAuthorizing],
// [PhaseReady], [PhaseError] and [PhaseDestroyed]. Use [Service.Phase] to
// query the current one.
//
// # Plugins
//
// Plugins are initialized before the module starts and shut down in reverse
// order once it stopped:
//
//	import "github.com/bft-labs/ytcontrol/plugins/configwatcher"
//
//	svc, err := ytcontrol.New(cfg,
//	    ytcontrol.WithConfigPath(path),
//	    configwatcher.WithDefaultConfigWatcher(),
//	)
package ytcontrol
