// Package checker implements the four FestGuard detection modules.
//
// Architecture overview:
//
//   - Every module implements the Checker interface (Check + Module). Check
//     never returns an error: network and parse failures are folded into the
//     ModuleResult as a fixed score, an issue and a details "error" entry, so
//     the engine can always classify.
//   - URLChecker is pure and inspects only the URL string.
//   - DomainChecker asks a Registrar (WHOISRegistrar in production) for the
//     registration record and correlates the creation date with the seasonal
//     event calendar in package keywords.
//   - TransportChecker inspects the TLS handshake and, independently, follows
//     redirects over HTTPS.
//   - ContentChecker fetches the page once and scores scam language, forms
//     asking for secrets and deceptive page structure.
//
// Scores accumulate on a scorecard and are clamped once, when the result is
// built, so that a trusted-extension bonus can offset other findings of the
// same module.
package checker
