package utils

import "time"

// user-facing error messages
const MISSING_LOGIN_FIELDS_ERROR = "Email and password are required"
const INVALID_CREDENTIALS_ERROR = "Invalid email or password"
const VERIFICATION_REQUIRED_ERROR = "Please verify your email before logging in"
const GENERIC_LOGIN_ERROR = "We had some trouble logging you in. Please try again!"

const MISSING_VERIFY_FIELDS_ERROR = "Email and verification code are required"
const ACCOUNT_NOT_FOUND_ERROR = "No account found for this email"
const ALREADY_VERIFIED_ERROR = "This email is already verified"
const INVALID_CODE_ERROR = "Invalid verification code"
const EXPIRED_CODE_ERROR = "Verification code has expired. Please request a new one"
const GENERIC_VERIFY_ERROR = "We had some trouble verifying your email. Please try again!"

const INVALID_SIGNUP_ERROR = "A valid email, name and a password of at least 8 characters are required"
const EMAIL_TAKEN_SIGNUP_ERROR = "Someone might have signed up with that email before. Please try logging in!"
const GENERIC_SIGNUP_ERROR = "We had some trouble signing you up. Please try again!"
const VERIFICATION_SENT_MESSAGE = "If the account exists and is not verified, a new code has been sent"

const UNAUTHORIZED_ERROR = "Unauthorized"
const INVALID_REQUEST_ERROR = "Invalid request body"
const RATE_LIMIT_ERROR = "Too many requests. Please slow down and try again shortly"
const GENERIC_SERVER_ERROR = "Something went wrong. Please try again!"

// token and code settings
const ACCESS_TOKEN_ISSUER = "voicebridge"
const VERIFICATION_CODE_SECRET_LENGTH = 16
const DEFAULT_VERIFICATION_CODE_TTL = 15 * time.Minute

const SIGNUP_SUCCESS_MESSAGE = "Account created. Check your email for a verification code"
const EMAIL_VERIFIED_MESSAGE = "Email verified successfully"
const MISSING_EMAIL_ERROR = "A valid email is required"
const INVALID_SETTINGS_ERROR = "Invalid settings"
const INVALID_SESSION_ERROR = "Invalid therapy session"
const MISSING_USER_ID_ERROR = "userId is required"

const AI_SERVICE_ERROR = "The AI service could not process this request. Please try again!"
const INVALID_AUDIO_ERROR = "Audio must be base64 encoded"
const MISSING_TRANSCRIPT_OR_AUDIO_ERROR = "Either rawTranscript or audioBase64 is required"
const MISSING_COLOR_REPORT_FIELDS_ERROR = "Color and audioData are required"
const MISSING_TEXT_OR_AUDIO_ERROR = "Either text or audioData is required"
const MISSING_PLAY_FIELDS_ERROR = "Scenario and childInput are required"
const MISSING_TARGET_TEXT_ERROR = "targetText is required"
const MISSING_AUDIO_ERROR = "audioBase64 is required"
const NO_SPEECH_FEEDBACK = "We couldn't hear any speech. Try again a little louder and closer to the microphone."
const NO_SPEECH_ENCOURAGEMENT = "That's okay, every try is practice. Let's give it another go!"

const MISSING_TEXT_ERROR = "Text is required"
const TTS_ERROR = "We could not generate speech right now. Please try again!"
const VOICES_ERROR = "We could not load the available voices. Please try again!"
const GUIDE_NOT_FOUND_ERROR = "Guide not found"
