// Package journal keeps an append-only SQLite record of load control
// events.
//
// Every outcome the controller reports (applied toggles and mode
// changes, rejections, failures, emergency shutdowns) is stored with the
// aggregate that followed it. The journal is a history for operators; it
// is never used to restore the load registry, which always starts from
// configuration.
//
// Usage:
//
//	j := journal.New(db.DB)
//	ctrl.AddNotifier(j)
//
//	recent, err := j.ListByDevice(ctx, "water-pump", 20)
package journal
