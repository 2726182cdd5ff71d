// Package billing provides the domain model for invoicing, payments and receipts.
//
// Key Aggregates:
//   - Invoice: line items, totals and the outstanding balance that payments reduce
//   - Payment: an immutable record of money received against one invoice
//   - Receipt: a breakdown of a payment across the invoice's line items
//
// Money arithmetic rounds to 2 decimal places after every step (see valueobject.Round2),
// so displayed line amounts always add up to displayed totals.
//
// Two allocation strategies coexist and are recorded on each receipt:
//   - AllocateTaxExclusive weighs lines by quantity x unit price and rounds each share
//     independently. Used when a payment is recorded.
//   - AllocateTaxInclusive weighs lines by line total + tax and lets the last line absorb
//     the rounding residue so the shares add up to the payment exactly. Used when a
//     receipt is generated for an existing payment.
package billing
