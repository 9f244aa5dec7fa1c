// Package models defines the core domain models for Splitledger.
//
// # Ledger Records
//
// A ledger is an append-only log of three record collections:
//   - Member: a named participant, keyed by name inside its ledger
//   - Purchase: an expense fronted by one member and split among participants
//   - Repayment: a direct transfer of money between two members
//
// Records are never updated or deleted once written. Balances, settlement
// plans and member histories are derived from the full log on every request
// (see package calculator) and are never stored.
//
// # Users
//
// User is a login account. Users record purchases and repayments on behalf of
// ledger members; a user does not have to be a member of the ledger.
//
// # Design Principles
//
// 1. **Append-only**: records are immutable after creation
// 2. **Exact money**: amounts use decimal.Decimal, never float64
// 3. **Names as references**: members are referenced by name, not by pointer
// 4. **Required timestamps**: the store stamps every record on creation
package models
