// Package ir defines the language-tagged intermediate representation that
// sits between lowering and rendering.
//
// Every type is generic over a lang.Pair, so a Statement[lang.PythonRust]
// can only be handed to code written for that pair. ir imports nothing
// internal except lang; it never refers back to the source AST.
//
// Key design constraints:
//   - Variants are closed: each implements an unexported marker method
//   - Consumers dispatch through StatementVisitor and ExpressionVisitor,
//     so a new variant fails to compile until every consumer handles it
//   - Argument and element slices keep source order
//   - Values are plain data and are not mutated after lowering
package ir
