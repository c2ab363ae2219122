package core

// SetEditStepHook installs a hook that runs after each order-edit step.
// Returning an error from the hook aborts the edit at that point.
func SetEditStepHook(svc OrderService, hook func(step string) error) {
	svc.(*orderService).stepHook = hook
}
