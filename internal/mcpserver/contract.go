package mcpserver

// ComponentModelDoc describes the Raido component model for devtools
// consumers inspecting session journals.
const ComponentModelDoc = `# Raido Component Model

Raido renders a server-side tree of stateful UI components. Every page a
session serves corresponds to one **generation** of that tree, and the
session journal records what each generation looked like.

## Components and chains

- A **component** owns a label, child components, a view, and tracked
  state variables.
- Components can be wrapped in **decorations**. The component plus its
  decorations form a *chain*; callbacks and rendering always enter the
  chain at its head, outermost decoration first.

## Request cycle

1. The submitted form is dispatched against the callback registry of the
   generation that rendered it: value callbacks first, then children,
   then at most one action callback for the whole tree.
2. The tree's state is captured into a new generation.
3. The tree renders the next page with a fresh registry.

## Call / answer

A component may ` + "`Call`" + ` another component: the callee's chain temporarily
replaces the caller's place in the tree until the callee ` + "`Answer`" + `s.
The answer's results are handed to the caller's resume target, and both
chains return to their pre-call shape. Mid-call generations therefore
journal the delegation decorations too.

## Backtracking

Navigating back to an earlier page and submitting it restores that
generation: the journals from the newest generation down to the target
are replayed, so the tree re-enters the exact state the old page was
rendered from. History after the target is discarded and a fresh
generation is appended.

## Journal entries

Each ` + "`session_state`" + ` entry has:

- ` + "`owner`" + ` – label of the component that recorded the entry
- ` + "`field`" + ` – the tracked variable (or ` + "`chain`" + `/` + "`children`" + ` for
  structural records)
- ` + "`value`" + ` – JSON encoding of the captured value

Entries appear in capture order; replaying them in that order inside a
generation, from the newest generation backwards, reconstructs the tree.
`
