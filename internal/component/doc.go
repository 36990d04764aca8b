// Package component implements the stateful component tree at the heart of
// raido: callback dispatch, decoration chains, call/answer control transfer,
// and the backtracking log.
//
// A Component owns an ordered list of children and a decoration chain whose
// head defaults to the component itself. Every operation on a component
// (processing the callbacks submitted with a request, rendering, capturing
// backtracking state) goes through the current chain head, never the
// component directly, so decorations can intercept behavior without the
// component knowing.
//
// Per request, dispatch visits the tree in a fixed order: a component's own
// triggered value callbacks fire first, then each child is visited through
// its chain, then the component's own action callbacks. At most one action
// callback fires per request across the whole tree.
//
// Control transfer is expressed as data rather than stack unwinding: every
// traversal step returns a Control that is either Continue, a call (the
// request is finished early and the caller renders as the callee from now
// on), or an answer (consumed by the answer-capturing decoration installed
// when the call was made, which restores both chains and invokes the resume
// target with the call's extra arguments followed by the answer's results).
//
//	dialog := component.New(component.WithView(dialogView))
//	form := component.New(
//		component.WithMethod("confirmed", onConfirmed),
//		component.WithView(formView),
//	)
//	// inside an action callback on form:
//	return form.Call(dialog, component.ResumeMethod("confirmed"), itemID), nil
//	// and later, inside an action callback on dialog:
//	return dialog.Answer(true), nil
//
// Backtracking is opt-in per field. State that should survive the browser
// back button lives in Var[T] values bound to a component; each request the
// session walks the tree through the chains and appends every tracked value
// to a Log. Replaying logs from the newest generation down to an older one
// restores exactly the tracked state present when that generation was
// captured, including decoration chains mid-call.
package component
