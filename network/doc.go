// Package network provides a lazy directed acyclic graph of matrix-valued
// nodes for composing learning workflows.
//
// A graph is built from Source nodes, which hold data bound at runtime, and
// derived nodes created with Apply or one of the typed combinators (Sum,
// Mean, ColBind, RowBind). Nothing is computed at construction time:
// evaluation happens when Value is called on a node, and results are memoized
// per node. Each node carries a version counter; a memo is reused only while
// the versions of all inputs are unchanged, so rebinding a Source with new
// data invalidates exactly the nodes downstream of it.
//
// Machines attach a model to a pair of nodes. Machine.Fit evaluates the
// training nodes and fits the model once; Machine.Predict wires the fitted
// model into the graph as a new derived node. Rebinding the input Source and
// re-evaluating the terminal node is how a fitted workflow predicts on new
// data.
//
// Example:
//
//	xs := network.NewSource("xs")
//	ys := network.NewSource("ys")
//	mach := network.NewMachine("ols", linear.NewLinearRegression(), xs, ys)
//
//	xs.Bind(X)
//	ys.Bind(y)
//	if err := mach.Fit(); err != nil { ... }
//
//	yhat := mach.Predict(xs)
//	xs.Bind(Xnew)
//	preds, err := yhat.Value()
package network
