// Package app provides the live application list consumed by the switcher.
//
// The Manager keeps installed app packages in install order and tracks the
// focused app. Every change is broadcast to listeners as a fresh descriptor
// snapshot, which is what each switcher reconciles against.
//
// Key Components:
//   - Manager: Install, uninstall and focus coordinator
//   - Descriptor snapshots (focused app carries Active)
//   - Change listeners
//
// Example Usage:
//
//	manager := app.NewManager()
//	manager.Subscribe(func(descs []types.Descriptor) { sw.Reconcile(descs) })
//	if err := manager.Install(pkg); err != nil {
//	    log.Fatal(err)
//	}
//	manager.Focus(pkg.ID)
package app
