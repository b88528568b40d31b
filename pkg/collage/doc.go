// Package collage implements the collage layout engine.
//
// A [Page] is a grid of columns and dynamically grown rows. Every photo is
// placed in exactly one [Cell]; a cell covers one grid slot or a small merged
// block (two columns, two rows, or a 2×2 quad). Cells never overlap and, once
// the page is sealed, every grid slot in the occupied rows belongs to exactly
// one cell.
//
// # Pipeline
//
// Building a layout follows four steps:
//
//  1. [Columns] picks the column count from the photo set and output ratio
//  2. [Page.AddCell] inserts photos row by row, randomly merging slots
//  3. [Page.Adjust] computes geometry: rows fill the page width, photos keep
//     their aspect ratio where possible, and the total height matches the
//     target ratio
//  4. [Page.Scale] converts the unit-width page to output pixels
//
// [UserCollage.MakePage] runs steps 1-3 and reshuffles the photos on every
// call, so repeated calls produce different arrangements of the same set.
//
// # Randomness
//
// All randomness (shuffle and merge decisions) comes from a *rand.Rand that
// can be injected with [WithRand]. Two pages built from the same photos with
// the same seed are identical.
//
// # Units
//
// Geometry is stored in page units: the page is 1.0 wide and Ratio tall
// after [Page.Adjust]. Nothing is rounded until the renderer converts a
// scaled page to pixels.
package collage
