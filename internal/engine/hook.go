package engine

// HookPos names a point in a hookable object's lifecycle where a Hook may
// be invoked.
type HookPos struct {
	Name string
}

// HookPosTick fires once per tick of a ticking component, after the tick
// function runs.
var HookPosTick = &HookPos{Name: "Tick"}

// HookCtx carries the information passed to a Hook when it is invoked.
type HookCtx struct {
	Domain Hookable
	Pos    *HookPos
	Item   interface{}
}

// Hook is a small piece of logic a Hookable object can invoke without
// knowing anything about its implementation. Monitors and recorders are
// built as Hooks so the simulated core never imports them.
type Hook interface {
	Func(ctx HookCtx)
}

// Hookable accepts Hooks.
type Hookable interface {
	AcceptHook(hook Hook)
}

// HookableBase implements Hookable and can be embedded by any type that
// wants to support hooks.
type HookableBase struct {
	hooks []Hook
}

// AcceptHook registers hook to be invoked on future InvokeHook calls.
func (h *HookableBase) AcceptHook(hook Hook) {
	h.hooks = append(h.hooks, hook)
}

// NumHooks returns how many hooks are registered.
func (h *HookableBase) NumHooks() int {
	return len(h.hooks)
}

// InvokeHook runs every registered hook with ctx.
func (h *HookableBase) InvokeHook(ctx HookCtx) {
	for _, hook := range h.hooks {
		hook.Func(ctx)
	}
}
