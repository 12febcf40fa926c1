// Package i18n holds the bilingual response catalog. Flow prompts are keyed
// by (flow, step, language) and standalone messages by (id, language);
// English is the mandatory fallback and the catalog refuses to construct if
// any key is missing its English template.
package i18n

import (
	"fmt"

	"github.com/jason-slatt/cameroon-voice-ai/internal/domain/models"
)

const (
	English = "en"
	French  = "fr"
)

// SupportedLanguages lists every language a prompt lookup may request.
var SupportedLanguages = []string{English, French}

// MessageID keys a standalone response template outside any flow step.
type MessageID string

const (
	MsgGreeting       MessageID = "greeting"
	MsgGoodbye        MessageID = "goodbye"
	MsgOffTopic       MessageID = "off_topic"
	MsgGeneralSupport MessageID = "general_support"
	MsgCancelled      MessageID = "cancelled"
	MsgMaxAttempts    MessageID = "max_attempts"

	MsgAccountExists      MessageID = "account_exists"
	MsgAccountRequired    MessageID = "account_required"
	MsgAccountCreated     MessageID = "account_created"
	MsgAccountCheckFailed MessageID = "account_check_failed"

	MsgBalance       MessageID = "balance"
	MsgHistoryHeader MessageID = "history_header"
	MsgHistoryEmpty  MessageID = "history_empty"

	MsgInvalidName     MessageID = "invalid_name"
	MsgInvalidAge      MessageID = "invalid_age"
	MsgInvalidSex      MessageID = "invalid_sex"
	MsgInvalidAmount   MessageID = "invalid_amount"
	MsgAmountRange     MessageID = "amount_range"
	MsgInsufficient    MessageID = "insufficient_funds"
	MsgInvalidPhone    MessageID = "invalid_phone"
	MsgInvalidPIN      MessageID = "invalid_pin"
	MsgInvalidChoice   MessageID = "invalid_choice"
	MsgInvalidPassword MessageID = "invalid_password"
	MsgYesOrNo         MessageID = "yes_or_no"

	MsgCorrectName  MessageID = "correct_name"
	MsgWithdrawRedo MessageID = "withdraw_redo"
	MsgDepositRedo  MessageID = "deposit_redo"
	MsgTransferRedo MessageID = "transfer_redo"

	MsgTransferSuccess    MessageID = "transfer_success"
	MsgTransferFailed     MessageID = "transfer_failed"
	MsgWithdrawalSuccess  MessageID = "withdrawal_success"
	MsgTopUpSuccess       MessageID = "topup_success"
	MsgDailyLimitExceeded MessageID = "daily_limit_exceeded"
	MsgUnknownBeneficiary MessageID = "unknown_beneficiary"
	MsgBeneficiaryAdded   MessageID = "beneficiary_added"
	MsgCardBlocked        MessageID = "card_blocked"
	MsgBankDetails        MessageID = "bank_details"
	MsgBillPaid           MessageID = "bill_paid"
	MsgLimitChanged       MessageID = "limit_changed"
	MsgServiceError       MessageID = "service_error"

	MsgOTPSent      MessageID = "otp_sent"
	MsgOTPInvalid   MessageID = "otp_invalid"
	MsgOTPExpired   MessageID = "otp_expired"
	MsgOTPExhausted MessageID = "otp_exhausted"
	MsgNoPendingOTP MessageID = "no_pending_otp"

	MsgPasswordResetSent MessageID = "password_reset_sent"
	MsgPasswordChanged   MessageID = "password_changed"
	MsgWhatsAppLinked    MessageID = "whatsapp_linked"

	MsgDashboardSummary       MessageID = "dashboard_summary"
	MsgDashboardSavings       MessageID = "dashboard_savings"
	MsgDashboardCount         MessageID = "dashboard_count"
	MsgDashboardRegistrations MessageID = "dashboard_registrations"
)

type promptKey struct {
	flow models.FlowType
	step models.FlowStep
}

var prompts = map[promptKey]map[string]string{
	{models.FlowAccountCreation, models.StepAskName}: {
		English: "Welcome! Let's open your account. What is your full name?",
		French:  "Bienvenue ! Créons votre compte. Quel est votre nom complet ?",
	},
	{models.FlowAccountCreation, models.StepAskAge}: {
		English: "Thank you %s. How old are you?",
		French:  "Merci %s. Quel âge avez-vous ?",
	},
	{models.FlowAccountCreation, models.StepAskSex}: {
		English: "Are you male or female? (M/F)",
		French:  "Êtes-vous un homme ou une femme ? (H/F)",
	},
	{models.FlowAccountCreation, models.StepAskGroupement}: {
		English: "Which savings group (groupement) do you belong to?",
		French:  "À quel groupement appartenez-vous ?",
	},
	{models.FlowAccountCreation, models.StepConfirm}: {
		English: "Please confirm: name %s, age %s, sex %s, groupement %s. Is everything correct? (yes/no)",
		French:  "Veuillez confirmer : nom %s, âge %s, sexe %s, groupement %s. Tout est correct ? (oui/non)",
	},

	{models.FlowWithdrawal, models.StepAskAmount}: {
		English: "How much would you like to withdraw? (between %s and %s %s)",
		French:  "Combien souhaitez-vous retirer ? (entre %s et %s %s)",
	},
	{models.FlowWithdrawal, models.StepConfirm}: {
		English: "Withdraw %s %s. Do you confirm? (yes/no)",
		French:  "Retrait de %s %s. Confirmez-vous ? (oui/non)",
	},

	{models.FlowTopUp, models.StepAskAmount}: {
		English: "How much would you like to deposit? (between %s and %s %s)",
		French:  "Combien souhaitez-vous déposer ? (entre %s et %s %s)",
	},
	{models.FlowTopUp, models.StepConfirm}: {
		English: "Deposit of %s %s. Do you confirm? (yes/no)",
		French:  "Dépôt de %s %s. Confirmez-vous ? (oui/non)",
	},

	{models.FlowTransfer, models.StepAskReceiver}: {
		English: "What is the recipient's phone number?",
		French:  "Quel est le numéro de téléphone du destinataire ?",
	},
	{models.FlowTransfer, models.StepAskAmount}: {
		English: "How much would you like to send to %s?",
		French:  "Quel montant souhaitez-vous envoyer au %s ?",
	},
	{models.FlowTransfer, models.StepAskPIN}: {
		English: "Please enter your PIN to authorize this transfer.",
		French:  "Veuillez saisir votre code PIN pour autoriser ce transfert.",
	},
	{models.FlowTransfer, models.StepConfirm}: {
		English: "Send %s %s to %s. Do you confirm? (yes/no)",
		French:  "Envoyer %s %s au %s. Confirmez-vous ? (oui/non)",
	},

	{models.FlowDashboard, models.StepAskDashboardAction}: {
		English: "What would you like to see?\n1. Total savings\n2. Transaction count\n3. New registrations\n4. Full summary",
		French:  "Que souhaitez-vous consulter ?\n1. Épargne totale\n2. Nombre de transactions\n3. Nouvelles inscriptions\n4. Résumé complet",
	},

	{models.FlowPasswordReset, models.StepConfirmPhone}: {
		English: "We will send a reset code by SMS to %s. Proceed? (yes/no)",
		French:  "Nous allons envoyer un code de réinitialisation par SMS au %s. Continuer ? (oui/non)",
	},

	{models.FlowPasswordChange, models.StepAskOldPassword}: {
		English: "Please enter your current password.",
		French:  "Veuillez saisir votre mot de passe actuel.",
	},
	{models.FlowPasswordChange, models.StepAskNewPassword}: {
		English: "Please enter your new password (at least 6 characters).",
		French:  "Veuillez saisir votre nouveau mot de passe (au moins 6 caractères).",
	},

	{models.FlowWhatsAppLink, models.StepAskWhatsAppChoice}: {
		English: "Should we link WhatsApp to this number (%s)? (yes/no)",
		French:  "Faut-il lier WhatsApp à ce numéro (%s) ? (oui/non)",
	},
	{models.FlowWhatsAppLink, models.StepAskWhatsAppNumber}: {
		English: "Which WhatsApp number should we link?",
		French:  "Quel numéro WhatsApp faut-il lier ?",
	},
}

var messages = map[MessageID]map[string]string{
	MsgGreeting: {
		English: "Hello! I can help you with transfers, withdrawals, deposits, your balance and more. What would you like to do?",
		French:  "Bonjour ! Je peux vous aider pour vos virements, retraits, dépôts, votre solde et plus encore. Que souhaitez-vous faire ?",
	},
	MsgGoodbye: {
		English: "Goodbye! Thank you for banking with us.",
		French:  "Au revoir ! Merci de votre confiance.",
	},
	MsgOffTopic: {
		English: "I can only help with banking services. What would you like to do with your account?",
		French:  "Je ne peux vous aider que pour vos opérations bancaires. Que souhaitez-vous faire sur votre compte ?",
	},
	MsgGeneralSupport: {
		English: "I'm not sure I understood. You can ask me to send money, check your balance, withdraw, deposit, or open an account.",
		French:  "Je ne suis pas sûr d'avoir compris. Vous pouvez me demander d'envoyer de l'argent, consulter votre solde, retirer, déposer ou ouvrir un compte.",
	},
	MsgCancelled: {
		English: "Okay, I've cancelled that. What else can I do for you?",
		French:  "D'accord, c'est annulé. Que puis-je faire d'autre pour vous ?",
	},
	MsgMaxAttempts: {
		English: "Too many invalid answers. Let's start over whenever you're ready.",
		French:  "Trop de réponses invalides. Recommençons quand vous serez prêt.",
	},

	MsgAccountExists: {
		English: "You already have an account with us, so there's no need to open a new one. How else can I help?",
		French:  "Vous avez déjà un compte chez nous, inutile d'en ouvrir un nouveau. Comment puis-je vous aider autrement ?",
	},
	MsgAccountRequired: {
		English: "You need an account for that. Would you like to open one? Just say \"create account\".",
		French:  "Il vous faut un compte pour cela. Souhaitez-vous en ouvrir un ? Dites simplement « créer un compte ».",
	},
	MsgAccountCreated: {
		English: "Congratulations %s! Your account is open. Your account number is %s.",
		French:  "Félicitations %s ! Votre compte est ouvert. Votre numéro de compte est le %s.",
	},
	MsgAccountCheckFailed: {
		English: "I couldn't verify your account right now. Please try again in a moment.",
		French:  "Je n'ai pas pu vérifier votre compte pour le moment. Veuillez réessayer dans un instant.",
	},

	MsgBalance: {
		English: "Your balance is %s %s.",
		French:  "Votre solde est de %s %s.",
	},
	MsgHistoryHeader: {
		English: "Here are your recent transactions:",
		French:  "Voici vos transactions récentes :",
	},
	MsgHistoryEmpty: {
		English: "You have no recent transactions.",
		French:  "Vous n'avez aucune transaction récente.",
	},

	MsgInvalidName: {
		English: "That doesn't look like a name. Please tell me your full name.",
		French:  "Cela ne ressemble pas à un nom. Veuillez me donner votre nom complet.",
	},
	MsgInvalidAge: {
		English: "Please give an age between 18 and 120.",
		French:  "Veuillez indiquer un âge entre 18 et 120 ans.",
	},
	MsgInvalidSex: {
		English: "Please answer M for male or F for female.",
		French:  "Veuillez répondre H pour homme ou F pour femme.",
	},
	MsgInvalidAmount: {
		English: "I didn't catch a valid amount. Please give a number greater than zero.",
		French:  "Je n'ai pas compris le montant. Veuillez donner un nombre supérieur à zéro.",
	},
	MsgAmountRange: {
		English: "The amount must be between %s and %s %s.",
		French:  "Le montant doit être compris entre %s et %s %s.",
	},
	MsgInsufficient: {
		English: "That's more than your available balance of %s %s. Please give a smaller amount.",
		French:  "C'est plus que votre solde disponible de %s %s. Veuillez donner un montant plus petit.",
	},
	MsgInvalidPhone: {
		English: "That phone number looks too short. Please give at least 8 digits.",
		French:  "Ce numéro de téléphone semble trop court. Veuillez donner au moins 8 chiffres.",
	},
	MsgInvalidPIN: {
		English: "Your PIN must be 4 to 6 digits.",
		French:  "Votre code PIN doit comporter de 4 à 6 chiffres.",
	},
	MsgInvalidChoice: {
		English: "Please choose an option between 1 and 4.",
		French:  "Veuillez choisir une option entre 1 et 4.",
	},
	MsgInvalidPassword: {
		English: "That password is too short. It must be at least 6 characters.",
		French:  "Ce mot de passe est trop court. Il doit comporter au moins 6 caractères.",
	},
	MsgYesOrNo: {
		English: "Please answer yes or no.",
		French:  "Veuillez répondre oui ou non.",
	},

	MsgCorrectName: {
		English: "Okay, what is your correct full name?",
		French:  "D'accord, quel est votre nom complet exact ?",
	},
	MsgWithdrawRedo: {
		English: "Okay, how much would you like to withdraw instead?",
		French:  "D'accord, combien souhaitez-vous retirer à la place ?",
	},
	MsgDepositRedo: {
		English: "Okay, how much would you like to deposit instead?",
		French:  "D'accord, combien souhaitez-vous déposer à la place ?",
	},
	MsgTransferRedo: {
		English: "Okay, how much would you like to send instead?",
		French:  "D'accord, quel montant souhaitez-vous envoyer à la place ?",
	},

	MsgTransferSuccess: {
		English: "Done! %s %s sent to %s. Transaction reference: %s.",
		French:  "C'est fait ! %s %s envoyés au %s. Référence de la transaction : %s.",
	},
	MsgTransferFailed: {
		English: "The transfer could not be completed: %s",
		French:  "Le transfert n'a pas pu aboutir : %s",
	},
	MsgWithdrawalSuccess: {
		English: "Your withdrawal of %s %s is confirmed. Reference: %s.",
		French:  "Votre retrait de %s %s est confirmé. Référence : %s.",
	},
	MsgTopUpSuccess: {
		English: "Your deposit of %s %s is confirmed. Reference: %s.",
		French:  "Votre dépôt de %s %s est confirmé. Référence : %s.",
	},
	MsgDailyLimitExceeded: {
		English: "This would exceed your daily limit of %s %s. Try a smaller amount or come back tomorrow.",
		French:  "Cela dépasserait votre plafond journalier de %s %s. Essayez un montant plus petit ou revenez demain.",
	},
	MsgUnknownBeneficiary: {
		English: "I don't know %s yet. Please add them as a beneficiary first by saying \"add beneficiary\".",
		French:  "Je ne connais pas encore %s. Veuillez d'abord l'ajouter comme bénéficiaire en disant « ajouter un bénéficiaire ».",
	},
	MsgBeneficiaryAdded: {
		English: "%s has been added to your beneficiaries.",
		French:  "%s a été ajouté à vos bénéficiaires.",
	},
	MsgCardBlocked: {
		English: "Your card ending in %s has been blocked. A new card will be sent to you.",
		French:  "Votre carte se terminant par %s a été bloquée. Une nouvelle carte vous sera envoyée.",
	},
	MsgBankDetails: {
		English: "Your bank details: IBAN %s, BIC %s, account holder %s.",
		French:  "Vos coordonnées bancaires : IBAN %s, BIC %s, titulaire %s.",
	},
	MsgBillPaid: {
		English: "Your %s bill of %s %s is paid. Reference: %s.",
		French:  "Votre facture %s de %s %s est payée. Référence : %s.",
	},
	MsgLimitChanged: {
		English: "Your daily limit is now %s %s.",
		French:  "Votre plafond journalier est maintenant de %s %s.",
	},
	MsgServiceError: {
		English: "Something went wrong on our side. Please try again shortly.",
		French:  "Une erreur est survenue de notre côté. Veuillez réessayer dans un instant.",
	},

	MsgOTPSent: {
		English: "For your security, I've sent a %d-digit code by SMS. Please tell me the code to confirm.",
		French:  "Pour votre sécurité, je vous ai envoyé un code à %d chiffres par SMS. Veuillez me donner le code pour confirmer.",
	},
	MsgOTPInvalid: {
		English: "That code is not correct. %d attempt(s) remaining.",
		French:  "Ce code est incorrect. Il vous reste %d tentative(s).",
	},
	MsgOTPExpired: {
		English: "That code has expired. Please start the operation again.",
		French:  "Ce code a expiré. Veuillez recommencer l'opération.",
	},
	MsgOTPExhausted: {
		English: "Too many wrong codes. The operation was cancelled for your security.",
		French:  "Trop de codes erronés. L'opération a été annulée pour votre sécurité.",
	},
	MsgNoPendingOTP: {
		English: "There is no operation waiting for a code right now.",
		French:  "Aucune opération n'attend de code pour le moment.",
	},

	MsgPasswordResetSent: {
		English: "A reset code has been sent to %s. Follow the SMS instructions to choose a new password.",
		French:  "Un code de réinitialisation a été envoyé au %s. Suivez les instructions du SMS pour choisir un nouveau mot de passe.",
	},
	MsgPasswordChanged: {
		English: "Your password has been changed.",
		French:  "Votre mot de passe a été modifié.",
	},
	MsgWhatsAppLinked: {
		English: "WhatsApp is now linked to %s.",
		French:  "WhatsApp est maintenant lié au %s.",
	},

	MsgDashboardSummary: {
		English: "Over %s: %s %s across %d transactions.",
		French:  "Sur %s : %s %s pour %d transactions.",
	},
	MsgDashboardSavings: {
		English: "Total savings: %s %s.",
		French:  "Épargne totale : %s %s.",
	},
	MsgDashboardCount: {
		English: "%d transactions recorded.",
		French:  "%d transactions enregistrées.",
	},
	MsgDashboardRegistrations: {
		English: "%d new registrations.",
		French:  "%d nouvelles inscriptions.",
	},
}

// Catalog resolves prompts and messages with English fallback. Construct it
// once at startup; NewCatalog fails if any key cannot resolve for any
// supported language.
type Catalog struct{}

// NewCatalog validates the static tables and returns the catalog.
func NewCatalog() (*Catalog, error) {
	for key, byLang := range prompts {
		for _, lang := range SupportedLanguages {
			if _, ok := byLang[lang]; !ok {
				if _, ok := byLang[English]; !ok {
					return nil, fmt.Errorf("prompt %s/%s has no template for %q and no english fallback", key.flow, key.step, lang)
				}
			}
		}
	}
	for id, byLang := range messages {
		for _, lang := range SupportedLanguages {
			if _, ok := byLang[lang]; !ok {
				if _, ok := byLang[English]; !ok {
					return nil, fmt.Errorf("message %s has no template for %q and no english fallback", id, lang)
				}
			}
		}
	}
	return &Catalog{}, nil
}

// Prompt renders the step prompt for a flow in the given language, falling
// back to English. An unregistered (flow, step) pair is a programming error
// and yields an empty string.
func (c *Catalog) Prompt(flow models.FlowType, step models.FlowStep, lang string, args ...any) string {
	byLang, ok := prompts[promptKey{flow, step}]
	if !ok {
		return ""
	}
	return render(byLang, lang, args...)
}

// Message renders a standalone message in the given language, falling back
// to English.
func (c *Catalog) Message(id MessageID, lang string, args ...any) string {
	byLang, ok := messages[id]
	if !ok {
		return ""
	}
	return render(byLang, lang, args...)
}

func render(byLang map[string]string, lang string, args ...any) string {
	tmpl, ok := byLang[lang]
	if !ok {
		tmpl = byLang[English]
	}
	if len(args) == 0 {
		return tmpl
	}
	return fmt.Sprintf(tmpl, args...)
}
