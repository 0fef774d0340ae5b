// Package analysis turns recorded trajectories into terminal-friendly
// summaries.
//
//   - [NewPhasePortrait]: any two state components against each other
//   - [NewOrbitPortrait]: absolute paths of both bodies in the plane
//   - [PortraitToASCII]: renders a portrait on a character grid
//   - [DominantPeriod]: strongest oscillation period of a sampled signal
//
// # Example
//
//	portrait := analysis.NewOrbitPortrait(reader.ReadAll(result.States))
//	fmt.Print(analysis.PortraitToASCII(portrait, 80, 30))
package analysis
