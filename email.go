// Copyright 2024 The mmark Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//		 https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

package mmark

import "github.com/go-playground/validator/v10"

// emailValidator backs bare-email autolink detection (§4.3: "<foo@bar.com>"
// with no scheme gets a "mailto:" prefix iff the content validates as an
// email address"). Validation is delegated to
// [github.com/go-playground/validator/v10] rather than hand-rolled, per
// spec.md §1's requirement that email-address validation be handled by an
// external collaborator.
var emailValidator = validator.New()

// isValidEmail reports whether s validates as an email address.
func isValidEmail(s string) bool {
	return emailValidator.Var(s, "email") == nil
}
