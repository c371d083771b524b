/*
Package paperfund implements a crowdfunding platform for research papers.

Authors submit papers as drafts and publish them to open a funding window.
Anyone can contribute coins towards a published paper. A configured cut of
every contribution is collected as the platform fee, the rest is held on an
escrow account derived from the paper key. Once the funding goal is reached
the author can claim the collected coins. Token holders can cast a single,
balance weighted vote per paper.

The platform is controlled by a gconf based configuration singleton that
holds the fee rate, the minimum funding goal, the fee collector address and
a global pause switch.
*/
package paperfund
