package alerts

import (
	"context"
	"errors"
	"fmt"
)

// Broadcast sends alert to every notifier and joins the failures. A failing
// notifier does not stop delivery to the others.
func Broadcast(ctx context.Context, notifiers []Notifier, alert Alert) error {
	var errs []error
	for _, n := range notifiers {
		if err := n.Send(ctx, alert); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", n.Name(), err))
		}
	}
	return errors.Join(errs...)
}
