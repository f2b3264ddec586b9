// Package layout adjusts rendered template pages so text and decorations fit
// the canvas.
//
// Two procedures are provided:
//
//   - AutoFit shrinks an element's font size step by step until its text
//     fits on one line, bounded by a minimum size and an attempt budget.
//   - AdjustTitleArrow grows a container's bottom padding when the title
//     ends too close to the arrow image below it.
//
// Both work against the Document and Element interfaces, which a host
// implements on top of a real rendering engine. Every measurement goes
// through the host, so each read reflects the styles applied so far.
package layout
