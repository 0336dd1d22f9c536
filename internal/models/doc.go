// Package models defines the core domain models for payout distribution.
//
// # Models
//
//   - Recipient: someone entitled to part of the total amount
//   - Group: a named, purely organizational collection of recipients
//   - Snapshot: recipients, groups and total amount at one instant
//
// # Design Principles
//
// 1. **Derived fields are never input**: Recipient.Payout is always overwritten
// by the calculator and never read back from a file or a caller.
// 2. **Avoid circular references**: recipients point at groups by ID string,
// groups do not list their members.
// 3. **Soft referential integrity**: removing a group ungroups its members, it
// never deletes them.
// 4. **Static palette**: colors come from an immutable table, and the derived
// color of a recipient is a pure function of its ID.
package models
